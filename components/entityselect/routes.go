package entityselect

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/goliatone/go-entityselect/pkg/model"
)

// Mux is the minimal interface required to register a net/http handler.
// It is satisfied by *http.ServeMux.
type Mux interface {
	Handle(pattern string, handler http.Handler)
}

// MountPath returns the full mount path for the component route under basePath.
func MountPath(basePath string, fns ...OptionFn) string {
	opts := NewOptions(fns...)
	return mountPath(basePath, opts.RoutePath)
}

// Endpoint describes the options endpoint for a select widget: results under
// "data" mapped to value/label, a default limit param and the search param
// bound to the widget's own input.
func Endpoint(basePath string, fns ...OptionFn) model.EndpointConfig {
	opts := NewOptions(fns...)
	return model.EndpointConfig{
		URL:         mountPath(basePath, opts.RoutePath),
		Method:      http.MethodGet,
		ResultsPath: "data",
		Params: map[string]string{
			opts.LimitParam: strconv.Itoa(opts.DefaultLimit),
		},
		DynamicParams: map[string]string{
			opts.SearchParam: "{{self}}",
		},
		Mapping: model.EndpointMapping{
			Value: "value",
			Label: "label",
		},
	}
}

func mountPath(basePath, routePath string) string {
	basePath = strings.TrimSpace(basePath)
	routePath = strings.TrimSpace(routePath)

	if routePath == "" {
		routePath = "/"
	}
	if !strings.HasPrefix(routePath, "/") {
		routePath = "/" + routePath
	}

	if basePath == "" || basePath == "/" {
		return routePath
	}
	if !strings.HasPrefix(basePath, "/") {
		basePath = "/" + basePath
	}
	basePath = strings.TrimRight(basePath, "/")
	return basePath + routePath
}
