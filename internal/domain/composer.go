package domain

// Composer is a composer known to the works provider.
type Composer struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	CompleteName string `json:"complete_name"`
	Epoch        string `json:"epoch"`
	Portrait     string `json:"portrait,omitempty"`
	Birth        string `json:"birth,omitempty"`
	Death        string `json:"death,omitempty"`
}

// ComposerWork is one catalogued work. The provider sends the flags as "1"/"0"
// strings; they are decoded into real booleans by the adapter.
type ComposerWork struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Subtitle    string `json:"subtitle,omitempty"`
	Popular     bool   `json:"popular"`
	Recommended bool   `json:"recommended"`
	Genre       string `json:"genre"`
}

// ParseFlag decodes a provider string flag. Only the literal "1" is true.
func ParseFlag(v string) bool {
	return v == "1"
}
