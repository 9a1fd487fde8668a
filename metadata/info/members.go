package info

//AnsiMembers represents ANSI member substitution templates, placeholder $0 is the receiver or the first argument
var AnsiMembers = map[string]string{
	"strings.ToUpper":   "Upper($0)",
	"strings.ToLower":   "Lower($0)",
	"strings.TrimSpace": "Trim($0)",
	"strings.Len":       "Length($0)",
	"strings.Substring": "Substring($0, $1 + 1, $2)",
	"strings.IndexOf":   "CharIndex($1, $0) - 1",
	"time.Year":         "Year($0)",
	"time.Month":        "Month($0)",
	"time.Day":          "Day($0)",
	"math.Abs":          "Abs($0)",
	"math.Round":        "Round($0)",
	"math.Floor":        "Floor($0)",
	"math.Ceiling":      "Ceiling($0)",
}

//MergeMembers returns members overridden with supplied ones
func MergeMembers(members map[string]string, overrides map[string]string) map[string]string {
	ret := make(map[string]string, len(members)+len(overrides))
	for k, v := range members {
		ret[k] = v
	}
	for k, v := range overrides {
		ret[k] = v
	}
	return ret
}
