package mood

import "github.com/jmylchreest/prism/internal/colour"

// Grade is a WCAG contrast verdict.
type Grade string

const (
	GradePass Grade = "pass"
	GradeWarn Grade = "warn"
	GradeFail Grade = "fail"
)

// PassRatio is WCAG AAA and WarnRatio is WCAG AA, both for normal text.
const (
	PassRatio = 7.0
	WarnRatio = 4.5
)

// GradeRatio grades a contrast ratio.
func GradeRatio(ratio float64) Grade {
	switch {
	case ratio >= PassRatio:
		return GradePass
	case ratio >= WarnRatio:
		return GradeWarn
	default:
		return GradeFail
	}
}

// Check is the contrast of one role against the background.
type Check struct {
	Role  string  `json:"role"`
	Ratio float64 `json:"ratio"`
	Grade Grade   `json:"grade"`
}

// AuditRoles are the roles whose legibility against bg is audited.
func AuditRoles() []string {
	return []string{RoleFG, RoleFGDim, RoleUIPrim}
}

// Audit grades the contrast of the text and hero roles against bg.
// Roles with malformed values fail with a zero ratio.
func Audit(p *Palette) []Check {
	checks := make([]Check, 0, len(AuditRoles()))
	bg := p.Get(RoleBG)
	for _, role := range AuditRoles() {
		ratio, err := colour.ContrastRatioHex(p.Get(role), bg)
		if err != nil {
			checks = append(checks, Check{Role: role, Grade: GradeFail})
			continue
		}
		checks = append(checks, Check{Role: role, Ratio: ratio, Grade: GradeRatio(ratio)})
	}
	return checks
}

// Worst returns the lowest grade among checks.
func Worst(checks []Check) Grade {
	worst := GradePass
	for _, c := range checks {
		switch c.Grade {
		case GradeFail:
			return GradeFail
		case GradeWarn:
			worst = GradeWarn
		}
	}
	return worst
}
