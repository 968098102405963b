package flip

import "sort"

// DefaultStyle is rendered when the command has no text.
const DefaultStyle = "classic"

// Sources:
//   - http://www.emoticonfun.org/flip/
//   - http://emojicons.com/table-flipping
var styles = map[string]string{
	"classic":  "(╯°□°)╯︵ ┻━┻",
	"rage":     "(ﾉಥ益ಥ）ﾉ\ufeff ┻━┻",
	"whoops":   "┬──┬\ufeff ¯\\_(ツ)",
	"two":      "┻━┻ ︵ヽ(`Д´)ﾉ︵\ufeff ┻━┻",
	"relax":    "┬─┬ノ( º _ ºノ)",
	"teeth":    "(ノಠ益ಠ)ノ彡┻━┻",
	"monocle":  "(╯ಠ_ರೃ)╯︵ ┻━┻",
	"person":   "(╯°□°）╯︵ /(.□. \\)",
	"jake":     "(┛❍ᴥ❍\ufeff)┛彡┻━┻",
	"owl":      "(ʘ∇ʘ)ク 彡 ┻━┻",
	"laptop":   "(ノÒ益Ó)ノ彡▔▔▏",
	"strong":   "/(ò.ó)┛彡┻━┻",
	"yelling":  "(┛◉Д◉)┛彡┻━┻",
	"shrug":    "┻━┻ ︵\ufeff ¯\\(ツ)/¯ ︵ ┻━┻",
	"pudgy":    "(ノ ゜Д゜)ノ ︵ ┻━┻",
	"battle":   "(╯°□°)╯︵ ┻━┻ ︵ ╯(°□° ╯)",
	"return":   "(ノ^_^)ノ┻━┻ ┬─┬ ノ( ^_^ノ)",
	"cry":      "(╯'□')╯︵ ┻━┻",
	"freakout": "(ﾉಥДಥ)ﾉ︵┻━┻･/",
	"people":   "(/ .□.)\\ ︵╰(゜Д゜)╯︵ /(.□. \\)",
	"force":    "(._.) ~ ︵ ┻━┻",
	"bear":     "ʕノ•ᴥ•ʔノ ︵ ┻━┻",
	"magic":    "(/¯◡ ‿ ◡)/¯ ~ ┻━┻",
	"robot":    "┗[© ♒ ©]┛ ︵ ┻━┻",
	"opposite": "ノ┬─┬ノ ︵ ( \\o°o)\\",
	"cute":     "┻━┻ ︵ ლ(⌒-⌒ლ)",
}

// styleNames is sorted once at init so listings are stable.
var styleNames = func() []string {
	names := make([]string, 0, len(styles))
	for name := range styles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}()

// Style is a named, pre-rendered table-flip art string.
type Style struct {
	Name string
	Art  string
}

// LookupStyle returns the art for a lowercase style name.
func LookupStyle(name string) (string, bool) {
	art, ok := styles[name]
	return art, ok
}

// Styles returns every style sorted by name.
func Styles() []Style {
	out := make([]Style, 0, len(styleNames))
	for _, name := range styleNames {
		out = append(out, Style{Name: name, Art: styles[name]})
	}
	return out
}

// StyleNames returns the sorted style names.
func StyleNames() []string {
	out := make([]string, len(styleNames))
	copy(out, styleNames)
	return out
}
