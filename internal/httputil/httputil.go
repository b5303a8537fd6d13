package httputil

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

// Redirect issues a 302 to the given location.
func Redirect(w http.ResponseWriter, r *http.Request, url string) {
	http.Redirect(w, r, url, http.StatusFound)
}

// URLParamID parses a numeric chi route parameter.
func URLParamID(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, name), 10, 64)
}

// OptionalFormValue returns a pointer to the field value, nil when blank.
// Profile fields like bio and location distinguish unset from empty.
func OptionalFormValue(r *http.Request, name string) *string {
	v := r.FormValue(name)
	if v == "" {
		return nil
	}
	return &v
}
