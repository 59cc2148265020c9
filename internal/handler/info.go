package handler

// ServiceInfo is the self-description served on the root path.
type ServiceInfo struct {
	Service     string         `json:"service"`
	Description string         `json:"description"`
	Endpoints   []EndpointInfo `json:"endpoints"`
}

// EndpointInfo describes one route of the gateway.
type EndpointInfo struct {
	Path         string `json:"path"`
	Method       string `json:"method"`
	Description  string `json:"description"`
	Response     string `json:"response"`
	RoleRequired string `json:"role_required"`
}

const salesRoles = "admin, sales"

var serviceInfo = ServiceInfo{
	Service:     "Sales Gateway",
	Description: "This gateway manages sales operations including subscriptions, pricing, and inventory.",
	Endpoints: []EndpointInfo{
		{
			Path:         "/subscriptions",
			Method:       "GET",
			Description:  "Get all subscriptions",
			Response:     "JSON array of subscription objects",
			RoleRequired: salesRoles,
		},
		{
			Path:         "/subscriptions/{id}",
			Method:       "GET",
			Description:  "Get subscription by ID",
			Response:     "JSON object of the subscription",
			RoleRequired: salesRoles,
		},
		{
			Path:         "/subscriptions/{id}/car",
			Method:       "GET",
			Description:  "Get car information for a subscription",
			Response:     "JSON object of the car information",
			RoleRequired: salesRoles,
		},
		{
			Path:         "/subscriptions",
			Method:       "POST",
			Description:  "Create a new subscription",
			Response:     "JSON object of the created subscription",
			RoleRequired: salesRoles,
		},
		{
			Path:         "/subscriptions/{id}",
			Method:       "PATCH",
			Description:  "Update subscription by ID",
			Response:     "JSON object of the updated subscription",
			RoleRequired: salesRoles,
		},
		{
			Path:         "/cars/available",
			Method:       "GET",
			Description:  "Get all available cars",
			Response:     "JSON array of available car objects",
			RoleRequired: salesRoles,
		},
		{
			Path:         "/subscriptions/{id}",
			Method:       "DELETE",
			Description:  "Delete subscription by ID",
			Response:     "JSON object of the deleted subscription",
			RoleRequired: salesRoles,
		},
		{
			Path:         "/login",
			Method:       "POST",
			Description:  "User login",
			Response:     "JSON object with login details and authorization token",
			RoleRequired: "none",
		},
		{
			Path:         "/health",
			Method:       "GET",
			Description:  "Health check",
			Response:     "JSON object with status of the service",
			RoleRequired: "none",
		},
	},
}
