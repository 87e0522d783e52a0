// Package routegate evaluates an ordered route policy in front of page
// handlers. Every decision is a pure function of the request path and the
// validated claim set; the gate never touches the user store, so a stale
// role or a ban applied mid-session is only picked up at the next sign-in.
package routegate

import "strings"

// Claims mirrors the claim surface of the auth package without an import
// cycle.
type Claims interface {
	UserID() string
	Role() string
	HasRole(role string) bool
	IsAtLeast(minRole string) bool
}

type Decision int

const (
	// Skip means the path is outside the gate's scope; the gate expresses
	// no opinion and the request proceeds untouched.
	Skip Decision = iota
	Allow
	Redirect
)

func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case Redirect:
		return "redirect"
	default:
		return "skip"
	}
}

// Result is the outcome of evaluating a policy against one request.
type Result struct {
	Decision Decision
	// Rule names the rule that produced the decision, for logging.
	Rule string
	// Location is the redirect target when Decision is Redirect.
	Location string
}

// Rule pairs a predicate with an action. Rules are evaluated in order and
// the first one whose When returns true wins; there is no fallthrough.
type Rule struct {
	Name string
	When func(path string, claims Claims) bool
	Then func(path string, claims Claims) Result
}

// Policy is an ordered rule list bounded by a path scope. Policies are
// immutable after construction and safe for concurrent use.
type Policy struct {
	// Scope lists the path prefixes the gate owns. The root path is always
	// in scope. Anything else is Skip'd without evaluating rules.
	Scope []string
	Rules []Rule
}

const (
	LoginPath     = "/login"
	SignupPath    = "/signup"
	DashboardPath = "/dashboard"
	AdminArea     = "/dashboard/admin"
	TechArea      = "/dashboard/tech"
)

// DefaultPolicy is the site policy: public pages stay open, everything
// else wants a session, and the admin/tech areas under the dashboard are
// role-gated. Signed-in users are bounced off the login and signup pages.
func DefaultPolicy() *Policy {
	return &Policy{
		Scope: []string{DashboardPath, "/resources", "/profile", LoginPath, SignupPath},
		Rules: []Rule{
			{
				Name: "authenticated-on-auth-pages",
				When: func(path string, claims Claims) bool {
					return claims != nil && (underPath(path, LoginPath) || underPath(path, SignupPath))
				},
				Then: redirectTo(DashboardPath),
			},
			{
				Name: "public",
				When: func(path string, _ Claims) bool {
					return path == "/" || underPath(path, LoginPath) || underPath(path, SignupPath)
				},
				Then: allow(),
			},
			{
				Name: "anonymous",
				When: func(_ string, claims Claims) bool {
					return claims == nil
				},
				Then: redirectTo(LoginPath),
			},
			{
				Name: "admin-area",
				When: func(path string, claims Claims) bool {
					return underPath(path, AdminArea) && !claims.HasRole("admin")
				},
				Then: redirectTo(DashboardPath),
			},
			{
				Name: "tech-area",
				When: func(path string, claims Claims) bool {
					return underPath(path, TechArea) && !claims.IsAtLeast("tech")
				},
				Then: redirectTo(DashboardPath),
			},
			{
				Name: "authenticated",
				When: func(string, Claims) bool { return true },
				Then: allow(),
			},
		},
	}
}

// Evaluate runs the policy for one request. Out-of-scope paths produce
// Skip; in-scope paths always hit a rule because the default policy ends
// in a catch-all.
func (p *Policy) Evaluate(path string, claims Claims) Result {
	path = normalizePath(path)

	if !p.InScope(path) {
		return Result{Decision: Skip}
	}

	for _, rule := range p.Rules {
		if rule.When == nil || rule.Then == nil {
			continue
		}
		if rule.When(path, claims) {
			res := rule.Then(path, claims)
			res.Rule = rule.Name
			return res
		}
	}

	return Result{Decision: Skip}
}

// InScope reports whether the gate owns the path. Prefix matching is
// segment aware: /dashboards is not under /dashboard.
func (p *Policy) InScope(path string) bool {
	path = normalizePath(path)

	if path == "/" {
		return true
	}

	for _, prefix := range p.Scope {
		if underPath(path, prefix) {
			return true
		}
	}

	return false
}

func allow() func(string, Claims) Result {
	return func(string, Claims) Result {
		return Result{Decision: Allow}
	}
}

func redirectTo(location string) func(string, Claims) Result {
	return func(string, Claims) Result {
		return Result{Decision: Redirect, Location: location}
	}
}

func underPath(path, prefix string) bool {
	return path == prefix || strings.HasPrefix(path, prefix+"/")
}

func normalizePath(path string) string {
	if path == "" {
		return "/"
	}
	if len(path) > 1 {
		path = strings.TrimSuffix(path, "/")
	}
	return path
}
