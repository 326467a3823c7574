package sensitivity

import (
	"encoding/json"
	"fmt"
	"sort"
)

const DefaultProfile = "Default"

type Profile struct {
	Name  string          `json:"name"`
	Curve CurveParameters `json:"curve"`
	DPI   float64         `json:"dpi"`
	Game  Game            `json:"game,omitempty"`
}

// Profiles is a named set of curve profiles. The Default profile always
// exists and cannot be removed.
type Profiles struct {
	active   string
	profiles map[string]Profile
}

func NewProfiles() *Profiles {
	return &Profiles{
		active: DefaultProfile,
		profiles: map[string]Profile{
			DefaultProfile: {Name: DefaultProfile, Curve: DefaultCurve(), DPI: 800},
		},
	}
}

func (p *Profiles) Add(profile Profile) bool {
	if profile.Name == "" {
		return false
	}
	if _, exists := p.profiles[profile.Name]; exists {
		return false
	}
	p.profiles[profile.Name] = profile
	return true
}

func (p *Profiles) Remove(name string) bool {
	if name == DefaultProfile {
		return false
	}
	if _, exists := p.profiles[name]; !exists {
		return false
	}
	delete(p.profiles, name)
	if p.active == name {
		p.active = DefaultProfile
	}
	return true
}

func (p *Profiles) SetActive(name string) bool {
	if _, exists := p.profiles[name]; !exists {
		return false
	}
	p.active = name
	return true
}

func (p *Profiles) Active() Profile {
	if prof, ok := p.profiles[p.active]; ok {
		return prof
	}
	return p.profiles[DefaultProfile]
}

func (p *Profiles) Names() []string {
	names := make([]string, 0, len(p.profiles))
	for name := range p.profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Export serializes every profile, ordered by name.
func (p *Profiles) Export() (string, error) {
	list := make([]Profile, 0, len(p.profiles))
	for _, name := range p.Names() {
		list = append(list, p.profiles[name])
	}
	data, err := json.MarshalIndent(list, "", "  ")
	if err != nil {
		return "", fmt.Errorf("exporting profiles: %w", err)
	}
	return string(data), nil
}

// Import merges profiles from a JSON array, replacing any with the same name.
func (p *Profiles) Import(data string) error {
	var list []Profile
	if err := json.Unmarshal([]byte(data), &list); err != nil {
		return fmt.Errorf("importing profiles: %w", err)
	}
	for _, prof := range list {
		if prof.Name == "" {
			return fmt.Errorf("importing profiles: profile without a name")
		}
	}
	for _, prof := range list {
		p.profiles[prof.Name] = prof
	}
	return nil
}
