package mapping

// Field is a positional column of the mapping sheet. The sheet's own header
// text is ignored; position decides meaning.
type Field int

const (
	OldWaferName Field = iota
	OldSpec
	OldName
	NewWaferName
	NewSpec
	NewName
	PackagingPlant
	PC
	PackageForm
	SemiFinished
	Remark
	SubstWafer1
	SubstSpec1
	SubstName1
	SubstWafer2
	SubstSpec2
	SubstName2
	SubstWafer3
	SubstSpec3
	SubstName3
	SubstWafer4
	SubstSpec4
	SubstName4
)

var fieldHeaders = [...]string{
	"旧晶圆品名", "旧规格", "旧品名",
	"新晶圆品名", "新规格", "新品名",
	"封装厂", "PC", "封装形式", "半成品", "备注",
	"替代晶圆1", "替代规格1", "替代品名1",
	"替代晶圆2", "替代规格2", "替代品名2",
	"替代晶圆3", "替代规格3", "替代品名3",
	"替代晶圆4", "替代规格4", "替代品名4",
}

// MaxColumns is the widest mapping sheet that can be loaded.
const MaxColumns = len(fieldHeaders)

// Header is the canonical column name.
func (f Field) Header() string {
	if f < 0 || int(f) >= MaxColumns {
		return ""
	}
	return fieldHeaders[f]
}

func (f Field) String() string {
	return f.Header()
}

// SubstituteTiers is the number of substitute column groups.
const SubstituteTiers = 4

// SubstNameField returns the substitute-name column of tier i (1..4).
func SubstNameField(i int) (Field, bool) {
	if i < 1 || i > SubstituteTiers {
		return 0, false
	}
	return SubstName1 + Field((i-1)*3), true
}

// CanonicalHeaders returns the canonical names of the first width columns.
func CanonicalHeaders(width int) []string {
	if width > MaxColumns {
		width = MaxColumns
	}
	if width < 0 {
		width = 0
	}
	out := make([]string, width)
	copy(out, fieldHeaders[:width])
	return out
}
