package router

import (
	"github.com/poslane/pos-admin/internal/middleware"
	"github.com/poslane/pos-admin/internal/model"
)

// adminOnly restricts a route to ADMIN callers.
var adminOnly = []string{model.RoleAdmin}

// policies is the per-route authorization table consulted by the Gate.
// Keys are "METHOD path" using the registered Echo route path (with
// :param placeholders).  A route absent from the table gets the
// default policy: authenticated and verified, any role.  Auth
// endpoints are public by definition: they are the ones that mint the
// credentials everyone else requires.
var policies = map[string]middleware.Policy{
	"GET /healthz": {Public: true},

	"POST /auth/login":         {Public: true},
	"POST /auth/register":      {Public: true},
	"GET /auth/verify-email":   {Public: true},
	"POST /auth/refresh-token": {Public: true},
	"POST /auth/logout":        {Public: true},

	"GET /companies":           {},
	"GET /companies/:id":       {},
	"POST /companies":          {Roles: adminOnly},
	"PATCH /companies/:id":     {Roles: adminOnly},
	"DELETE /companies/:id":    {Roles: adminOnly},

	"GET /stores":              {},
	"GET /stores/:id":          {},
	"POST /stores":             {Roles: adminOnly},
	"PATCH /stores/:id":        {Roles: adminOnly},
	"DELETE /stores/:id":       {Roles: adminOnly},

	"GET /users":               {Roles: adminOnly},
	"GET /users/:id":           {Roles: adminOnly},
	"DELETE /users/:id":        {Roles: adminOnly},
}

// LookupPolicy resolves the policy for a route.  It satisfies
// middleware.PolicyLookup.
func LookupPolicy(method, path string) (middleware.Policy, bool) {
	p, ok := policies[method+" "+path]
	return p, ok
}
