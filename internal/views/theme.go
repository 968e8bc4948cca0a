package views

import (
	"fmt"
	"strings"

	"github.com/BerylCAtieno/gtm-quest/internal/models"
)

type Theme string

const (
	ThemeSaaS       Theme = "saas"
	ThemeFintech    Theme = "fintech"
	ThemeHealthtech Theme = "healthtech"
	ThemeMartech    Theme = "martech"
	ThemeDevtools   Theme = "devtools"
	ThemeEcommerce  Theme = "ecommerce"
	ThemeAI         Theme = "ai"
	ThemeDefault    Theme = "default"
)

type themeRule struct {
	theme    Theme
	keywords []string
}

// themeRules are matched in order against the lower-cased industry;
// the first rule with a matching substring wins.
var themeRules = []themeRule{
	{ThemeSaaS, []string{"saas", "software"}},
	{ThemeFintech, []string{"fintech", "finance"}},
	{ThemeHealthtech, []string{"health", "medical"}},
	{ThemeMartech, []string{"marketing", "martech"}},
	{ThemeDevtools, []string{"developer", "devtool"}},
	{ThemeEcommerce, []string{"ecommerce", "retail"}},
	{ThemeAI, []string{"ai", "machine learning"}},
}

// IndustryTheme maps the free-text industry onto one of the visual themes.
func IndustryTheme(state models.GTMState) Theme {
	industry, ok := models.Text(state.Industry)
	if !ok {
		return ThemeDefault
	}
	industry = strings.ToLower(industry)
	for _, r := range themeRules {
		for _, kw := range r.keywords {
			if strings.Contains(industry, kw) {
				return r.theme
			}
		}
	}
	return ThemeDefault
}

// gradients are CSS backgrounds: a translucent tint of three colours over a
// dark base, one per theme.
var gradients = map[Theme]string{
	ThemeSaaS:       tint(0.4, 0.3, "30,58,138", "49,46,129", "88,28,135"),
	ThemeFintech:    tint(0.4, 0.3, "6,78,59", "19,78,74", "22,78,99"),
	ThemeHealthtech: tint(0.4, 0.3, "127,29,29", "136,19,55", "131,24,67"),
	ThemeMartech:    tint(0.4, 0.3, "124,45,18", "120,53,15", "113,63,18"),
	ThemeDevtools:   tint(0.4, 0.3, "76,29,149", "88,28,135", "112,26,117"),
	ThemeEcommerce:  tint(0.4, 0.3, "20,83,45", "6,78,59", "19,78,74"),
	ThemeAI:         tint(0.4, 0.3, "22,78,99", "30,58,138", "49,46,129"),
	ThemeDefault:    tint(0.6, 0.4, "24,24,27", "0,0,0", "24,24,27"),
}

func tint(edge, middle float64, from, via, to string) string {
	return fmt.Sprintf("linear-gradient(to bottom right, rgba(%s,%g), rgba(%s,%g), rgba(%s,%g)), #09090b",
		from, edge, via, middle, to, edge)
}

// ThemeGradient returns the hero background for t.
func ThemeGradient(t Theme) string {
	if g, ok := gradients[t]; ok {
		return g
	}
	return gradients[ThemeDefault]
}
