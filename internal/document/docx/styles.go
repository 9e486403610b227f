package docx

// RunStyle captures inline run formatting. Size is in half-points.
type RunStyle struct {
	Bold   bool
	Italic bool
	Size   int
	Color  string
}

const (
	TitleColor   = "111111"
	HeadingColor = "1F2937"
	RuleColor    = "B4B4B4"
	TitleSize    = 32
	HeadingSize  = 24
	BodySize     = 22
)

// StyleMap centralizes formatting for structural elements.
var StyleMap = map[string]RunStyle{
	"title": {
		Bold:  true,
		Size:  TitleSize,
		Color: TitleColor,
	},
	"heading": {
		Bold:  true,
		Size:  HeadingSize,
		Color: HeadingColor,
	},
	"subheading": {
		Bold: true,
		Size: BodySize,
	},
	"tableHeader": {
		Bold: true,
	},
	"key": {
		Bold: true,
	},
}

func headingStyle(level int) RunStyle {
	switch {
	case level <= 1:
		return StyleMap["title"]
	case level == 2:
		return StyleMap["heading"]
	default:
		return StyleMap["subheading"]
	}
}
