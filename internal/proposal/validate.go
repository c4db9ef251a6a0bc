package proposal

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"golang.org/x/text/unicode/norm"
)

// Draft is everything a creator submits to build a proposal.
type Draft struct {
	PartnerName    string        `json:"partner_name" validate:"required,max=80"`
	NebulaColor    string        `json:"nebula_color" validate:"omitempty,hexcolor"`
	StarColor      string        `json:"star_color" validate:"omitempty,hexcolor"`
	ProposalText   string        `json:"proposal_text" validate:"max=280"`
	MusicURL       string        `json:"music_url" validate:"omitempty,uri"`
	MusicStartTime float64       `json:"music_start_time" validate:"gte=0"`
	VideoURL       string        `json:"video_url" validate:"omitempty,uri"`
	Memories       []MemoryDraft `json:"memories" validate:"min=5,dive"`
	Gallery        []string      `json:"gallery" validate:"dive,required,uri"`
}

type MemoryDraft struct {
	ImageURL string `json:"image_url" validate:"omitempty,uri"`
	Caption  string `json:"caption" validate:"required,max=500"`
}

type CaptionUpdate struct {
	Caption string `json:"caption" validate:"required,max=500"`
}

// ValidationError lists the offending fields by their json names.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "invalid fields: " + strings.Join(e.Fields, ", ")
}

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

var validate = newValidator()

// Validate normalizes text fields in place and checks the struct tags.
func (d *Draft) Validate() error {
	d.PartnerName = NormalizeText(d.PartnerName)
	d.ProposalText = NormalizeText(d.ProposalText)
	d.NebulaColor = strings.TrimSpace(d.NebulaColor)
	d.StarColor = strings.TrimSpace(d.StarColor)
	for i := range d.Memories {
		d.Memories[i].Caption = NormalizeText(d.Memories[i].Caption)
	}
	return check(d)
}

func (u *CaptionUpdate) Validate() error {
	u.Caption = NormalizeText(u.Caption)
	return check(u)
}

func check(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate: %w", err)
	}
	ve := &ValidationError{}
	for _, fe := range verrs {
		ve.Fields = append(ve.Fields, fe.Namespace()[strings.Index(fe.Namespace(), ".")+1:])
	}
	return ve
}

// NormalizeText trims and composes text to NFC.
func NormalizeText(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}
