//go:build swag

package swaggerkit

// generated by `swag init --instanceName api`; registers itself with swag on import
import _ "lodgement/internal/services/api/docs"
