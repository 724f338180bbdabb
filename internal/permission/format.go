package permission

import "strings"

// Format is a wire format for permission strings.
type Format string

const (
	// FormatDotted is "module.action", the canonical form.
	FormatDotted Format = "dotted"
	// FormatUnderscore is "module_action".
	FormatUnderscore Format = "underscore"
	// FormatColon is "module:action".
	FormatColon Format = "colon"
)

// ParseFormat accepts the format names the permission service is known to send.
// The second return value is false for unrecognised names.
func ParseFormat(raw string) (Format, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "dotted", "dot", ".":
		return FormatDotted, true
	case "underscore", "_":
		return FormatUnderscore, true
	case "colon", ":":
		return FormatColon, true
	default:
		return "", false
	}
}

// UnmarshalText maps the aliases accepted by ParseFormat onto the canonical names.
// Unknown names are kept verbatim and later discarded by FormatConfig.Sanitize.
func (f *Format) UnmarshalText(b []byte) error {
	if parsed, ok := ParseFormat(string(b)); ok {
		*f = parsed
	} else {
		*f = Format(strings.ToLower(strings.TrimSpace(string(b))))
	}

	return nil
}

// Separator returns the separator character of the format.
func (f Format) Separator() string {
	switch f {
	case FormatUnderscore:
		return "_"
	case FormatColon:
		return ":"
	default:
		return "."
	}
}

// FormatConfig is the server-advertised permission parsing configuration.
type FormatConfig struct {
	PrimaryFormat    Format   `json:"primary_format"`
	Compatibility    bool     `json:"compatibility"`
	LegacyFormats    []Format `json:"legacy_formats"`
	HierarchyEnabled bool     `json:"hierarchy_enabled"`
	Version          string   `json:"version,omitempty"`
	MigrationStatus  string   `json:"migration_status,omitempty"`
}

// DefaultFormatConfig is used whenever the server configuration is unavailable.
func DefaultFormatConfig() FormatConfig {
	return FormatConfig{
		PrimaryFormat:    FormatDotted,
		Compatibility:    true,
		LegacyFormats:    []Format{FormatUnderscore, FormatColon},
		HierarchyEnabled: true,
	}
}

// Sanitize replaces an unknown primary format with dotted and drops unknown legacy formats.
func (cfg FormatConfig) Sanitize() FormatConfig {
	if _, ok := ParseFormat(string(cfg.PrimaryFormat)); !ok {
		cfg.PrimaryFormat = FormatDotted
	}

	legacy := make([]Format, 0, len(cfg.LegacyFormats))

	for _, f := range cfg.LegacyFormats {
		if _, ok := ParseFormat(string(f)); ok {
			legacy = append(legacy, f)
		}
	}

	cfg.LegacyFormats = legacy

	return cfg
}

// Accepts reports whether permission strings in format f are parsed under cfg.
func (cfg FormatConfig) Accepts(f Format) bool {
	if f == cfg.primary() {
		return true
	}

	if !cfg.Compatibility {
		return false
	}

	for _, legacy := range cfg.LegacyFormats {
		if legacy == f {
			return true
		}
	}

	return false
}

func (cfg FormatConfig) primary() Format {
	if cfg.PrimaryFormat == "" {
		return FormatDotted
	}

	return cfg.PrimaryFormat
}

// Canonical is a permission split into module and action.
type Canonical struct {
	Module string
	Action string
}

// String returns the dotted form.
func (c Canonical) String() string {
	return c.Module + "." + c.Action
}

// DetectFormat guesses the wire format of a raw permission string.
// Colon and dot are unambiguous separators; underscore is only assumed when neither is present,
// since module names themselves may contain underscores.
func DetectFormat(raw string) (Format, bool) {
	switch {
	case strings.Contains(raw, ":"):
		return FormatColon, true
	case strings.Contains(raw, "."):
		return FormatDotted, true
	case strings.Contains(raw, "_"):
		return FormatUnderscore, true
	default:
		return "", false
	}
}

// Normalize parses raw into its canonical form.
// The split happens at the last separator, so "crm.commission.read" yields module "crm.commission".
// It returns false when raw is unparseable or its format is not accepted by cfg.
func Normalize(raw string, cfg FormatConfig) (Canonical, bool) {
	raw = strings.ToLower(strings.TrimSpace(raw))
	if raw == "" {
		return Canonical{}, false
	}

	format, ok := DetectFormat(raw)
	if !ok || !cfg.Accepts(format) {
		return Canonical{}, false
	}

	idx := strings.LastIndex(raw, format.Separator())
	if idx <= 0 || idx == len(raw)-1 {
		return Canonical{}, false
	}

	return Canonical{Module: raw[:idx], Action: raw[idx+1:]}, true
}
