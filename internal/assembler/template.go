package assembler

import (
	_ "embed"
	"errors"
	"os"
	"strings"

	"github.com/rohmanhakim/scores-fixture/internal/resource"
	"github.com/titanous/json5"
)

//go:embed default_template.json
var defaultTemplateFile []byte

// Template is the response body every endpoint entry starts from.
type Template struct {
	body map[string]any
}

// DefaultTemplate returns the built-in template.
func DefaultTemplate() Template {
	t, err := ParseTemplate(defaultTemplateFile)
	if err != nil {
		panic(err)
	}
	return t
}

// LoadTemplate reads a JSON or JSON5 template. An empty path selects the
// built-in template.
func LoadTemplate(path string) (Template, error) {
	if path == "" {
		return DefaultTemplate(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Template{}, &AssemblyError{
			Message: err.Error(),
			Cause:   ErrCauseTemplateUnreadable,
			Path:    path,
		}
	}
	t, err := ParseTemplate(data)
	if err != nil {
		var assemblyErr *AssemblyError
		if errors.As(err, &assemblyErr) {
			assemblyErr.Path = path
		}
		return Template{}, err
	}
	return t, nil
}

// ParseTemplate accepts an object whose only key is an endpoint path
// ("/api/..."), in which case that key's value is the body, or a plain body
// object.
func ParseTemplate(data []byte) (Template, error) {
	var doc any
	if err := json5.Unmarshal(data, &doc); err != nil {
		return Template{}, &AssemblyError{
			Message: err.Error(),
			Cause:   ErrCauseTemplateInvalid,
		}
	}
	obj, ok := doc.(map[string]any)
	if !ok {
		return Template{}, &AssemblyError{
			Message: "template must be a JSON object",
			Cause:   ErrCauseTemplateInvalid,
		}
	}

	if len(obj) == 1 {
		for key, value := range obj {
			if !strings.HasPrefix(key, "/") {
				break
			}
			body, ok := value.(map[string]any)
			if !ok {
				return Template{}, &AssemblyError{
					Message: "template endpoint " + key + " is not an object",
					Cause:   ErrCauseTemplateInvalid,
				}
			}
			return Template{body: body}, nil
		}
	}
	return Template{body: obj}, nil
}

// Render returns a deep copy of the body with {comp}, {event}, {unit} and
// {lang} replaced in every string value. Other braces are left alone.
func (t Template) Render(rctx resource.Context, unit string) map[string]any {
	r := strings.NewReplacer(
		"{comp}", rctx.Comp(),
		"{event}", rctx.Event(),
		"{unit}", unit,
		"{lang}", rctx.Lang(),
	)
	return substitute(t.body, r).(map[string]any)
}

func substitute(v any, r *strings.Replacer) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = substitute(item, r)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = substitute(item, r)
		}
		return out
	case string:
		return r.Replace(val)
	default:
		return val
	}
}
