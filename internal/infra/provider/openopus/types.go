package openopus

import (
	"strings"

	"classichub-service/internal/domain"
)

type status struct {
	Success string `json:"success"`
	Error   string `json:"error,omitempty"`
}

func (s status) ok() bool {
	return s.Success == "true"
}

type composer struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	CompleteName string `json:"complete_name"`
	Epoch        string `json:"epoch"`
	Portrait     string `json:"portrait"`
	Birth        string `json:"birth"`
	Death        string `json:"death"`
}

type composersResponse struct {
	Status    status     `json:"status"`
	Composers []composer `json:"composers"`
}

// work flags arrive as "1"/"0" strings.
type work struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Subtitle    string `json:"subtitle"`
	Popular     string `json:"popular"`
	Recommended string `json:"recommended"`
	Genre       string `json:"genre"`
}

type worksResponse struct {
	Status status `json:"status"`
	Works  []work `json:"works"`
}

func (c *composer) toDomain() domain.Composer {
	return domain.Composer{
		ID:           c.ID,
		Name:         strings.TrimSpace(c.Name),
		CompleteName: strings.TrimSpace(c.CompleteName),
		Epoch:        c.Epoch,
		Portrait:     c.Portrait,
		Birth:        c.Birth,
		Death:        c.Death,
	}
}

func (w *work) toDomain() domain.ComposerWork {
	return domain.ComposerWork{
		ID:          w.ID,
		Title:       strings.TrimSpace(w.Title),
		Subtitle:    strings.TrimSpace(w.Subtitle),
		Popular:     domain.ParseFlag(w.Popular),
		Recommended: domain.ParseFlag(w.Recommended),
		Genre:       w.Genre,
	}
}
