package mood

import (
	"fmt"
	"maps"
	"slices"

	"github.com/jmylchreest/prism/internal/colour"
)

// Role names.
const (
	RoleBG        = "bg"
	RoleFG        = "fg"
	RoleFGDim     = "fg_dim"
	RoleFGMuted   = "fg_muted"
	RoleUIPrim    = "ui_prim"
	RoleUISec     = "ui_sec"
	RoleSemRed    = "sem_red"
	RoleSemGreen  = "sem_green"
	RoleSemYellow = "sem_yellow"
	RoleSemBlue   = "sem_blue"
	RoleSynKey    = "syn_key"
	RoleSynFun    = "syn_fun"
	RoleSynStr    = "syn_str"
	RoleSynAcc    = "syn_acc"

	RoleAnchor         = "anchor"
	RoleSurface        = "surface"
	RoleSurfaceDarker  = "surfaceDarker"
	RoleSurfaceLighter = "surfaceLighter"
	RoleText           = "text"
	RoleTextDim        = "textDim"
	RoleTextMuted      = "textMuted"

	// RoleBarBG is the translucent bar background, an rgba() string.
	RoleBarBG = "bar_bg"
)

// BarAlpha is the opacity of RoleBarBG.
const BarAlpha = 0.85

// FixedRoles returns the roles every palette carries as hex colours.
func FixedRoles() []string {
	return []string{
		RoleBG, RoleFG, RoleFGDim, RoleFGMuted, RoleUIPrim, RoleUISec,
		RoleSemRed, RoleSemGreen, RoleSemYellow, RoleSemBlue,
		RoleSynKey, RoleSynFun, RoleSynStr, RoleSynAcc,
	}
}

// Aliases maps each derived alias to the role it copies. RoleAnchor is not
// listed: it carries the anchor itself.
func Aliases() map[string]string {
	return map[string]string{
		RoleSurface:        RoleBG,
		RoleSurfaceLighter: RoleUISec,
		RoleSurfaceDarker:  RoleAnchor,
		RoleText:           RoleFG,
		RoleTextDim:        RoleFGDim,
		RoleTextMuted:      RoleFGMuted,
	}
}

// Palette is a complete set of named colours. It is produced wholesale by one
// generation and never partially updated.
type Palette struct {
	Colors map[string]string `json:"colors"`

	// Warnings holds configuration fallbacks from generation. Not persisted.
	Warnings []string `json:"-"`
}

// Get returns the value of role, or "" if absent.
func (p *Palette) Get(role string) string {
	if p == nil {
		return ""
	}
	return p.Colors[role]
}

// Roles returns the role names in sorted order.
func (p *Palette) Roles() []string {
	return slices.Sorted(maps.Keys(p.Colors))
}

// Clone returns a deep copy.
func (p *Palette) Clone() *Palette {
	return &Palette{Colors: maps.Clone(p.Colors), Warnings: slices.Clone(p.Warnings)}
}

// Validate checks that every fixed role and alias is a lowercase hex colour.
func (p *Palette) Validate() error {
	if p == nil || p.Colors == nil {
		return fmt.Errorf("palette has no colours")
	}
	roles := append(FixedRoles(), RoleAnchor)
	for alias := range Aliases() {
		roles = append(roles, alias)
	}
	for _, role := range roles {
		v, ok := p.Colors[role]
		if !ok {
			return fmt.Errorf("palette is missing role %q", role)
		}
		norm, err := colour.NormalizeHex(v)
		if err != nil {
			return fmt.Errorf("role %q: %w", role, err)
		}
		if norm != v {
			return fmt.Errorf("role %q: %q is not canonical", role, v)
		}
	}
	return nil
}
