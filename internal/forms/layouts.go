package forms

import (
	"math"
	"strconv"

	"docforms-backend/internal/document"
)

type layoutFunc func(b *builder) []document.Block

var layouts = map[string]layoutFunc{
	"memorandum":             memorandumLayout,
	"leave-application":      leaveApplicationLayout,
	"log-sheet":              logSheetLayout,
	"project-report":         monthEndReportLayout,
	"monthly-project-report": monthlyProjectReportLayout,
	"site-incident-report":   siteIncidentReportLayout,
	"tax-invoice":            taxInvoiceLayout,
	"purchase-order":         purchaseOrderLayout,
	"acceptance-letter":      acceptanceLetterLayout,
	"notice-letter":          noticeLetterLayout,
}

// memorandumLayout is written for the PDF serializer: label rows with rules.
func memorandumLayout(b *builder) []document.Block {
	blocks := []document.Block{
		document.Heading{Text: "MEMORANDUM", Level: 1, Align: document.AlignCenter},
		document.KeyValueRow{Key: "To", Value: b.v("to")},
		document.KeyValueRow{Key: "From", Value: b.v("from")},
		document.KeyValueRow{Key: "Date", Value: b.v("date")},
		document.KeyValueRow{Key: "Subject", Value: b.v("subject")},
		document.Blank(),
	}
	blocks = append(blocks, paragraphs(b.v("body"))...)
	if action := b.v("actionRequired"); action != "" {
		blocks = append(blocks, document.Blank(), document.Bold("Action Required:"))
		blocks = append(blocks, paragraphs(action)...)
	}
	blocks = append(blocks, document.Blank())
	blocks = append(blocks, b.signature("signature", "")...)
	return append(blocks, document.KeyValueRow{Key: "Date", Value: b.v("signatureDate")})
}

func leaveApplicationLayout(b *builder) []document.Block {
	blocks := b.title("LEAVE APPLICATION FORM")
	blocks = append(blocks,
		section("Employee Details"),
		b.grid("applicationDate", "employeeId", "employeeName", "department"),
		section("Leave Details"),
		document.Bold("Type of Leave:"),
	)
	blocks = append(blocks, b.checkboxes("leaveType", "other", "otherLeaveType")...)
	blocks = append(blocks,
		b.grid("leaveFrom", "leaveTo", "workingDays"),
		document.Labeled("Reason", b.v("reason")),
		section("Employee Signature"),
	)
	blocks = append(blocks, b.signature("employee", "employeeSignatureDate")...)
	blocks = append(blocks,
		section("Supervisor Approval"),
		document.Labeled("Supervisor Name", b.v("supervisorName")),
	)
	blocks = append(blocks, b.signature("supervisor", "supervisorSignatureDate")...)
	blocks = append(blocks, section("HR Approval"))
	return append(blocks, b.signature("hr", "hrSignatureDate")...)
}

func logSheetLayout(b *builder) []document.Block {
	blocks := b.title("EMPLOYEE LOG SHEET")
	blocks = append(blocks,
		b.grid("monthYear", "projectSite", "employeeName", "employeeId", "role", "department"),
		section("Daily Log"),
		b.rowsTable("entries"),
		document.Labeled("Total Hours", logSheetHours(b)),
		section("Employee Declaration"),
		document.Text("I declare that the hours recorded above are a true and accurate record of the work performed."),
	)
	blocks = append(blocks, b.signature("employee", "employeeDeclarationDate")...)
	blocks = append(blocks,
		section("Supervisor Verification"),
		b.grid("supervisorName", "supervisorRole"),
	)
	blocks = append(blocks, b.signature("supervisor", "supervisorSignatureDate")...)
	return append(blocks, document.Labeled("Comments", b.v("supervisorComments")))
}

// logSheetHours prefers the entered total and otherwise sums the daily rows.
func logSheetHours(b *builder) string {
	if v := b.v("totalHours"); v != "" {
		return v
	}
	var sum float64
	for _, row := range b.fs.Rows("entries") {
		if n, err := parseNumber(row["totalHours"]); err == nil && finiteNonNegative(n) {
			sum += n
		}
	}
	return formatQuantity(math.Round(sum*100) / 100)
}

func monthEndReportLayout(b *builder) []document.Block {
	revenue := document.MoneyFromFloat(b.fs.Number("revenue"))
	expenses := document.MoneyFromFloat(b.fs.Number("expenses"))

	blocks := b.title("MONTH-END PROJECT REPORT")
	blocks = append(blocks,
		document.Labeled("Reference No", b.ref),
		pairGrid(
			[2]string{"Reporting Month", b.choice("month") + " " + b.v("year")},
			[2]string{b.label("projectName"), b.v("projectName")},
			[2]string{b.label("preparedBy"), b.v("preparedBy")},
		),
		section("1. Financial Summary"),
		document.Table{
			Widths:   []float64{3, 2},
			Header:   true,
			Bordered: true,
			Rows: [][]document.Cell{
				document.Cells("Item", "Amount"),
				document.Cells("Revenue", rands(revenue)),
				document.Cells("Expenses", rands(expenses)),
				{document.BoldCell("Profit / Loss"), document.BoldCell(rands(revenue - expenses))},
			},
		},
		section("2. Project Progress"),
		document.Text(b.v("progress")),
		document.Bold("Milestones Achieved:"),
		document.Text(b.v("milestones")),
		section("3. HR Summary"),
		b.grid("staffCount", "leaveDays"),
		section("Approval"),
		document.Labeled("Approved By", b.v("approvedBy")),
	)
	return append(blocks, b.signature("approvedBy", "approvedByDate")...)
}

func monthlyProjectReportLayout(b *builder) []document.Block {
	blocks := b.title("MONTHLY PROJECT REPORT")
	blocks = append(blocks,
		pairGrid(
			[2]string{b.label("reportTitle"), b.v("reportTitle")},
			[2]string{b.label("preparedBy"), b.v("preparedBy")},
			[2]string{b.label("department"), b.v("department")},
			[2]string{b.label("dateSubmitted"), b.v("dateSubmitted")},
			[2]string{"Reporting Period", b.v("periodFrom") + " to " + b.v("periodTo")},
		),
	)
	for i, name := range []string{"executiveSummary", "achievements", "challenges", "financialSummary", "plannedActivities"} {
		blocks = append(blocks, section(strconv.Itoa(i+1)+". "+b.label(name)))
		blocks = append(blocks, paragraphs(b.v(name))...)
	}
	return blocks
}

func siteIncidentReportLayout(b *builder) []document.Block {
	blocks := b.title("SITE / INCIDENT REPORT")
	blocks = append(blocks,
		b.grid("reportNo", "date", "rev"),
		document.Bold("Report Type:"),
	)
	blocks = append(blocks, b.checkboxes("reportType", "other", "otherReportType")...)
	blocks = append(blocks,
		b.grid("projectSiteName", "client", "reportPreparedBy", "dateOfEvent", "location"),
		section("1. Purpose"),
	)
	blocks = append(blocks, paragraphs(b.v("purpose"))...)
	blocks = append(blocks, section("2. Observations"))
	blocks = append(blocks, paragraphs(b.v("observations"))...)
	blocks = append(blocks,
		section("3. Issues Identified"),
		b.rowsTable("issues"),
		section("4. Actions Required"),
		b.rowsTable("actions"),
		section("5. Conclusion"),
	)
	blocks = append(blocks, paragraphs(b.v("conclusion"))...)
	blocks = append(blocks,
		section("Sign-off"),
		document.Labeled("Prepared By", b.v("preparedBy")),
	)
	blocks = append(blocks, b.signature("preparedBy", "preparedByDate")...)
	blocks = append(blocks, document.Labeled("Reviewed By", b.v("reviewedBy")))
	return append(blocks, b.signature("reviewedBy", "reviewedByDate")...)
}

func taxInvoiceLayout(b *builder) []document.Block {
	totals := totalsFor(b.fs, b.opts.Rate())
	blocks := b.title("TAX INVOICE")
	return append(blocks,
		pairGrid(
			[2]string{"Invoice No", b.ref},
			[2]string{b.label("invoiceDate"), b.v("invoiceDate")},
		),
		section("Bill To"),
		b.grid("clientName", "clientAddress", "clientVat", "siteAddress"),
		b.lineItemsTable(),
		totalsTable([3]string{"Subtotal:", "VAT (" + totals.RatePercent() + "):", "TOTAL AMOUNT DUE:"}, totals),
		document.Blank(),
		document.Text("Bank Details: "+b.opts.BankDetails+" | Ref: "+b.ref),
		document.Paragraph{Runs: []document.Run{{Text: "Terms: Payment within 30 days of invoice date.", Italic: true}}},
	)
}

func purchaseOrderLayout(b *builder) []document.Block {
	totals := totalsFor(b.fs, b.opts.Rate())
	blocks := b.title("PURCHASE ORDER")
	blocks = append(blocks,
		pairGrid(
			[2]string{"PO Number", b.ref},
			[2]string{b.label("orderDate"), b.v("orderDate")},
			[2]string{b.label("supplierName"), b.v("supplierName")},
			[2]string{b.label("deliveryDate"), b.v("deliveryDate")},
		),
		b.lineItemsTable(),
		totalsTable([3]string{"Total Order Value (excl VAT):", "VAT:", "Total Order Value (incl VAT):"}, totals),
		document.Blank(),
		document.Labeled("Authorised By", b.v("authorisedBy")),
	)
	return append(blocks, b.signature("authorisedBy", "")...)
}

func acceptanceLetterLayout(b *builder) []document.Block {
	blocks := []document.Block{
		document.Heading{Text: b.opts.Company, Level: 1, Align: document.AlignCenter},
		document.Blank(),
		document.Labeled("Date", b.v("date")),
		document.Labeled("Our Ref", b.ref),
		document.Blank(),
		document.Bold(b.v("clientName")),
	}
	blocks = append(blocks, paragraphs(b.v("clientAddress"))...)
	blocks = append(blocks,
		document.Blank(),
		document.Labeled("Attention", b.v("contactPerson")),
		document.Blank(),
		document.Paragraph{Runs: []document.Run{{
			Text:      "SUBJECT: ACCEPTANCE OF CONTRACT / TENDER AWARD – " + b.v("projectName"),
			Bold:      true,
			Underline: true,
		}}},
		document.Blank(),
		document.Text("We are pleased to accept the award of the above-mentioned contract, awarded on "+
			b.v("awardDate")+", for the contract amount of "+b.money("amount")+" (excl. VAT)."),
		document.Text("We confirm that work will commence on "+b.v("startDate")+
			" and is scheduled for completion by "+b.v("endDate")+"."),
		document.Text("We look forward to a successful working relationship and to delivering the project to your satisfaction."),
		document.Blank(),
		document.Text("Yours faithfully,"),
		document.Blank(),
	)
	blocks = append(blocks, b.signature("authorisedSignatory", "")...)
	blocks = append(blocks, document.Labeled("Name", b.v("authorisedSignatory")))
	blocks = append(blocks, document.Blank())
	return append(blocks, b.signature("director", "")...)
}

func noticeLetterLayout(b *builder) []document.Block {
	blocks := b.title("NOTICE TO EMPLOYEE")
	blocks = append(blocks,
		pairGrid(
			[2]string{"Reference No", b.ref},
			[2]string{b.label("date"), b.v("date")},
			[2]string{b.label("employeeName"), b.v("employeeName")},
			[2]string{b.label("employeeId"), b.v("employeeId")},
			[2]string{b.label("noticeType"), b.choice("noticeType")},
		),
		document.Labeled("Subject", b.v("shortDescription")),
		section("Details"),
	)
	blocks = append(blocks, paragraphs(b.v("detailedReason"))...)
	blocks = append(blocks, section("Action Required"))
	blocks = append(blocks, paragraphs(b.v("actionRequired"))...)
	blocks = append(blocks,
		document.Labeled("Deadline", b.v("deadlineDate")),
		section("Acknowledgement"),
	)
	blocks = append(blocks, b.signature("employee", "employeeSignatureDate")...)
	return append(blocks, b.signature("hrManager", "hrManagerSignatureDate")...)
}
