//go:build !swag

package swaggerkit

import "github.com/swaggo/swag/v2"

// skeleton document served until `swag init` has generated the real one
func init() {
	swag.Register(InstanceName, &swag.Spec{
		Version:          "0.0.0",
		Title:            "Lodgement API",
		InfoInstanceName: InstanceName,
		SwaggerTemplate:  `{"openapi":"3.0.3","info":{"title":"Lodgement API","version":"0.0.0"},"paths":{}}`,
	})
}
