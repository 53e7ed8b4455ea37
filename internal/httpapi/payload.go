package httpapi

import (
	"errors"
	"net/url"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/hamed0406/uptimemonitor/internal/domain"
)

type monitorPayload struct {
	Name            string `json:"name" validate:"required,max=200"`
	URL             string `json:"url" validate:"required,max=500,url,http_protocol"`
	IntervalSeconds *int   `json:"interval_seconds" validate:"omitempty,min=1"`
}

func (p *monitorPayload) normalize() {
	p.Name = strings.TrimSpace(p.Name)
	p.URL = strings.TrimSpace(p.URL)
}

func (p monitorPayload) monitor() *domain.Monitor {
	interval := defaultIntervalSeconds
	if p.IntervalSeconds != nil {
		interval = *p.IntervalSeconds
	}
	return &domain.Monitor{Name: p.Name, URL: p.URL, IntervalSeconds: interval}
}

type payloadValidator struct {
	v *validator.Validate
}

func newPayloadValidator() *payloadValidator {
	v := validator.New()
	v.RegisterValidation("http_protocol", validateHTTPProtocol) //nolint:errcheck
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		return name
	})
	return &payloadValidator{v: v}
}

func validateHTTPProtocol(fl validator.FieldLevel) bool {
	u, err := url.Parse(fl.Field().String())
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// check returns field -> failed rule for every invalid field.
func (pv *payloadValidator) check(p monitorPayload) map[string]string {
	err := pv.v.Struct(p)
	if err == nil {
		return nil
	}
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) {
		return map[string]string{"_": err.Error()}
	}
	out := make(map[string]string, len(ves))
	for _, fe := range ves {
		out[fe.Field()] = fe.Tag()
	}
	return out
}
