package formgenwiring

import (
	"github.com/goliatone/go-entityselect/components/entityselect"
	"github.com/goliatone/go-entityselect/pkg/model"
)

// EndpointOverride returns an EndpointOverride for a relationship-backed
// select field served by the entityselect component.
//
// The generated override:
// - points at <basePath><RoutePath> (default: <basePath>/api/entities)
// - uses resultsPath "data" with value/label mapping
// - includes "format=options" and a default limit param
// - includes a dynamic search param mapped to "{{self}}"
//
// An error is returned when the override is missing its operation id or
// field path.
func EndpointOverride(operationID, fieldPath, basePath string, fns ...entityselect.OptionFn) (model.EndpointOverride, error) {
	cfg := entityselect.Endpoint(basePath, fns...)
	params := map[string]string{"format": "options"}
	for key, value := range cfg.Params {
		params[key] = value
	}
	cfg.Params = params

	ov := model.EndpointOverride{
		OperationID: operationID,
		FieldPath:   fieldPath,
		Endpoint:    cfg,
	}
	if err := ov.Validate(); err != nil {
		return model.EndpointOverride{}, err
	}
	return ov, nil
}

// ComponentEndpointOverride is EndpointOverride using the options of an
// existing component.
func ComponentEndpointOverride(c *entityselect.Component, operationID, fieldPath, basePath string) (model.EndpointOverride, error) {
	opts := c.Options()
	return EndpointOverride(operationID, fieldPath, basePath, func(o *entityselect.Options) {
		if o == nil {
			return
		}
		*o = opts
	})
}
