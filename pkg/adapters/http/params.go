package http

import (
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"golang.org/x/text/language"

	"github.com/aretw0/mold/pkg/bind"
	"github.com/aretw0/mold/pkg/serialize"
)

const maxMemory = 32 << 20

// ParamsFromRequest collects the query and form values of r. Multipart
// forms contribute their value fields; files are ignored.
func ParamsFromRequest(r *http.Request) (bind.Params, error) {
	var err error
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		err = r.ParseMultipartForm(maxMemory)
	} else {
		err = r.ParseForm()
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse request parameters")
	}
	params := make(bind.Params, len(r.Form))
	for k, v := range r.Form {
		params[k] = v
	}
	return params, nil
}

// Locale picks the locale of r: the locale query parameter, then the first
// Accept-Language entry, then fallback.
func Locale(r *http.Request, fallback language.Tag) language.Tag {
	if q := r.URL.Query().Get("locale"); q != "" {
		if tag, err := language.Parse(q); err == nil {
			return tag
		}
	}
	if h := r.Header.Get("Accept-Language"); h != "" {
		if tags, _, err := language.ParseAcceptLanguage(h); err == nil && len(tags) > 0 {
			return tags[0]
		}
	}
	return fallback
}

// Negotiate picks the output format from the format query parameter or the
// Accept header. It returns fallback when neither names one.
func Negotiate(r *http.Request, fallback serialize.Format) (serialize.Format, error) {
	if q := r.URL.Query().Get("format"); q != "" {
		return serialize.ParseFormat(q)
	}
	accept := r.Header.Get("Accept")
	switch {
	case strings.Contains(accept, "json"):
		return serialize.FormatJSON, nil
	case strings.Contains(accept, "xml"):
		return serialize.FormatXML, nil
	case strings.Contains(accept, "yaml"):
		return serialize.FormatYAML, nil
	}
	return fallback, nil
}

// ContentType returns the media type of format.
func ContentType(format serialize.Format) string {
	switch format {
	case serialize.FormatXML:
		return "application/xml; charset=utf-8"
	case serialize.FormatYAML:
		return "application/yaml; charset=utf-8"
	}
	return "application/json; charset=utf-8"
}

// Write sends an already serialized body with the content type of format.
func Write(w http.ResponseWriter, body string, format serialize.Format) error {
	return WriteStatus(w, http.StatusOK, body, format)
}

// WriteStatus is Write with an explicit status code.
func WriteStatus(w http.ResponseWriter, status int, body string, format serialize.Format) error {
	w.Header().Set("Content-Type", ContentType(format))
	w.WriteHeader(status)
	_, err := io.WriteString(w, body)
	return err
}

// configure applies the view options found in the query of r to s:
// exclude_all, include, exclude, recursive, indent, version and root=none.
func configure(s *serialize.Session, r *http.Request) error {
	q := r.URL.Query()
	if flag(q.Get("exclude_all")) {
		s.ExcludeAll()
	}
	s.Include(list(q["include"])...)
	s.Exclude(list(q["exclude"])...)
	if flag(q.Get("recursive")) {
		s.Recursive()
	}
	if v := q.Get("indent"); v != "" {
		if indent, err := strconv.ParseBool(v); err == nil {
			if indent {
				s.Indented()
			} else {
				s.Compact()
			}
		}
	}
	if q.Get("root") == "none" {
		s.WithoutRoot()
	}
	version, versioned, err := Version(q)
	if err != nil {
		return err
	}
	if versioned {
		s.Version(version)
	}
	return nil
}

// Version reads the version query parameter. The second result is false
// when the parameter is absent.
func Version(q url.Values) (float64, bool, error) {
	v := q.Get("version")
	if v == "" {
		return 0, false, nil
	}
	version, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, false, errors.Wrapf(err, "invalid version %q", v)
	}
	return version, true, nil
}

func flag(v string) bool {
	b, err := strconv.ParseBool(v)
	return err == nil && b
}

// list splits comma separated values.
func list(values []string) []string {
	var out []string
	for _, v := range values {
		for _, p := range strings.Split(v, ",") {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}
