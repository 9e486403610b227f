package forms

import "docforms-backend/internal/document"

// Sample returns a complete, valid field set for docType. It backs the CLI
// samples command and exercises every layout in tests.
func Sample(docType string) (FieldSet, bool) {
	fs, ok := samples[docType]
	if !ok {
		return FieldSet{}, false
	}
	return fs.Clone(), true
}

var samples = map[string]FieldSet{
	"memorandum": {Values: map[string]string{
		"to":             "All Site Staff",
		"from":           "Operations Manager",
		"date":           "2025-03-03",
		"subject":        "Quarterly safety induction",
		"body":           "All staff are required to attend the quarterly safety induction.\nThe session covers working at heights and PPE inspections.",
		"actionRequired": "Confirm attendance with your supervisor by Friday.",
		"signatureDate":  "2025-03-03",
	}},
	"leave-application": {Values: map[string]string{
		"applicationDate":       "2025-03-01",
		"employeeId":            "EMP-0042",
		"employeeName":          "Thandi Mokoena",
		"department":            "Engineering",
		"leaveType":             "annual",
		"leaveFrom":             "2025-04-07",
		"leaveTo":               "2025-04-11",
		"workingDays":           "5",
		"reason":                "Family holiday.",
		"employeeSignatureDate": "2025-03-01",
		"supervisorName":        "Pieter Botha",
	}},
	"log-sheet": {
		Values: map[string]string{
			"monthYear":               "March 2025",
			"projectSite":             "Northgate Substation",
			"employeeName":            "Sipho Ndlovu",
			"employeeId":              "EMP-0107",
			"role":                    "Site Technician",
			"department":              "Operations",
			"employeeDeclarationDate": "2025-03-31",
			"supervisorName":          "Pieter Botha",
			"supervisorRole":          "Site Supervisor",
		},
		Tables: map[string][]map[string]string{
			"entries": {
				{"date": "2025-03-03", "timeIn": "07:00", "timeOut": "16:00", "totalHours": "9", "roleTasks": "Cable pulling", "remarks": ""},
				{"date": "2025-03-04", "timeIn": "07:00", "timeOut": "15:30", "totalHours": "8.5", "roleTasks": "Terminations", "remarks": "Rain delay"},
			},
		},
	},
	"project-report": {Values: map[string]string{
		"month":          "03",
		"year":           "2025",
		"projectName":    "Northgate Substation Upgrade",
		"preparedBy":     "Lerato Dlamini",
		"revenue":        "1250000",
		"expenses":       "980500.50",
		"progress":       "Civil works complete; electrical installation at 60%.",
		"milestones":     "Transformer delivered and positioned.",
		"staffCount":     "24",
		"leaveDays":      "11",
		"approvedBy":     "Johan van Wyk",
		"approvedByDate": "2025-04-02",
	}},
	"monthly-project-report": {Values: map[string]string{
		"reportTitle":       "Northgate Substation Upgrade",
		"preparedBy":        "Lerato Dlamini",
		"department":        "Projects",
		"dateSubmitted":     "2025-04-01",
		"periodFrom":        "2025-03-01",
		"periodTo":          "2025-03-31",
		"executiveSummary":  "The project remains on schedule and within budget.",
		"achievements":      "Transformer installed.\nProtection panels commissioned.",
		"challenges":        "Two days lost to rain; recovered with weekend shifts.",
		"financialSummary":  "Spend to date is 78% of budget.",
		"plannedActivities": "Energise the new bay and hand over to the client.",
	}},
	"site-incident-report": {
		Values: map[string]string{
			"reportNo":         "SR-014",
			"date":             "2025-03-12",
			"reportType":       "incident",
			"projectSiteName":  "Northgate Substation",
			"client":           "City Power",
			"reportPreparedBy": "Sipho Ndlovu",
			"dateOfEvent":      "2025-03-11",
			"location":         "Bay 3",
			"purpose":          "Record a near miss during cable pulling.",
			"observations":     "A cable drum rolled when the chock was removed.",
			"conclusion":       "No injuries. Procedure updated.",
			"preparedBy":       "Sipho Ndlovu",
			"preparedByDate":   "2025-03-12",
		},
		Tables: map[string][]map[string]string{
			"issues":  {{"description": "Cable drum not secured", "risk": "high", "action": "Use two chocks per drum"}},
			"actions": {{"action": "Toolbox talk on drum handling", "responsible": "Pieter Botha", "dueDate": "2025-03-14"}},
		},
	},
	"tax-invoice": {
		Values: map[string]string{
			"invoiceDate":   "2025-03-31",
			"clientName":    "City Power",
			"clientAddress": "40 Heronmere Road\nReuven, Johannesburg",
			"clientVat":     "4123456789",
			"siteAddress":   "Northgate Substation",
		},
		LineItems: []document.LineItem{
			{Description: "Site supervision (days)", Quantity: 2, UnitPrice: 100},
			{Description: "Test certificate", Quantity: 1, UnitPrice: 50},
		},
	},
	"purchase-order": {
		Values: map[string]string{
			"orderDate":    "2025-03-05",
			"supplierName": "ARB Electrical Wholesalers",
			"deliveryDate": "2025-03-10",
			"authorisedBy": "Johan van Wyk",
		},
		LineItems: []document.LineItem{
			{Description: "95mm² Cu cable (m)", Quantity: 120, UnitPrice: 245.5},
			{Description: "Cable lugs", Quantity: 40, UnitPrice: 18.75},
		},
	},
	"acceptance-letter": {Values: map[string]string{
		"date":                "2025-02-20",
		"clientName":          "City Power",
		"clientAddress":       "40 Heronmere Road\nReuven, Johannesburg",
		"contactPerson":       "Ms N. Khumalo",
		"projectName":         "Northgate Substation Upgrade",
		"awardDate":           "2025-02-14",
		"amount":              "4850000",
		"startDate":           "2025-03-01",
		"endDate":             "2025-09-30",
		"authorisedSignatory": "Johan van Wyk",
	}},
	"notice-letter": {Values: map[string]string{
		"date":             "2025-03-15",
		"employeeName":     "Sipho Ndlovu",
		"employeeId":       "EMP-0107",
		"noticeType":       "Written Warning",
		"shortDescription": "Failure to wear PPE on site",
		"detailedReason":   "On 2025-03-11 you were observed working at height without a harness.",
		"actionRequired":   "Attend the working-at-heights refresher course.",
		"deadlineDate":     "2025-03-31",
	}},
}
