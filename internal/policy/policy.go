// Package policy decides whether an identity may perform an action.  Every
// protected route names its action explicitly; the table below is the only
// place that knows which actions are public, which need an account and
// which are reserved for administrators.
package policy

import (
	"net/http"

	"github.com/iliyamo/blog-api/internal/auth"
)

// Action names an operation a route performs.
type Action string

const (
	PostsList   Action = "posts.list"
	PostsRead   Action = "posts.read"
	PostsSearch Action = "posts.search"
	PostsCreate Action = "posts.create"
	PostsUpdate Action = "posts.update"
	PostsDelete Action = "posts.delete"

	CommentsList    Action = "comments.list"
	CommentsCreate  Action = "comments.create"
	CommentsDelete  Action = "comments.delete"
	CommentsApprove Action = "comments.approve"
	CommentsReject  Action = "comments.reject"
	CommentsQueue   Action = "comments.queue"

	LikesCreate Action = "likes.create"
	LikesDelete Action = "likes.delete"

	AccountMe              Action = "account.me"
	AuthResendVerification Action = "auth.resend_verification"
)

// Tag classifies an action.
type Tag int

const (
	Public Tag = iota + 1
	Authenticated
	OwnerOrAdmin
	AdminOnly
)

type rule struct {
	tag           Tag
	needsVerified bool
}

var rules = map[Action]rule{
	PostsList:    {tag: Public},
	PostsRead:    {tag: Public},
	PostsSearch:  {tag: Public},
	CommentsList: {tag: Public},

	CommentsCreate:         {tag: Authenticated, needsVerified: true},
	LikesCreate:            {tag: Authenticated},
	LikesDelete:            {tag: Authenticated},
	AccountMe:              {tag: Authenticated},
	AuthResendVerification: {tag: Authenticated},

	CommentsDelete: {tag: OwnerOrAdmin},

	CommentsApprove: {tag: AdminOnly},
	CommentsReject:  {tag: AdminOnly},
	CommentsQueue:   {tag: AdminOnly},
	PostsCreate:     {tag: AdminOnly},
	PostsUpdate:     {tag: AdminOnly},
	PostsDelete:     {tag: AdminOnly},
}

// TagOf reports the tag of a known action.
func TagOf(a Action) (Tag, bool) {
	r, ok := rules[a]
	return r.tag, ok
}

// Resource describes the object an owner-or-admin action targets.
type Resource struct {
	OwnerID uint64
}

// Reason explains a denial.
type Reason string

const (
	AuthenticationRequired Reason = "authentication_required"
	Unauthorized           Reason = "unauthorized"
	Forbidden              Reason = "forbidden"
	EmailNotVerified       Reason = "email_not_verified"
)

// Decision is the outcome of Authorize.  Reason is empty when Allowed.
type Decision struct {
	Allowed bool
	Reason  Reason
}

func allow() Decision       { return Decision{Allowed: true} }
func deny(r Reason) Decision { return Decision{Reason: r} }

// Authorize decides whether id may perform action on res.  A nil id is an
// anonymous caller.  res is only consulted for owner-or-admin actions and
// may be nil otherwise.  Unknown actions are denied.
func Authorize(id *auth.Identity, action Action, res *Resource) Decision {
	r, ok := rules[action]
	if !ok {
		return deny(Forbidden)
	}
	if r.tag == Public {
		return allow()
	}
	if id == nil {
		return deny(AuthenticationRequired)
	}

	switch r.tag {
	case OwnerOrAdmin:
		if id.IsAdmin() || (res != nil && res.OwnerID == id.ID) {
			return allow()
		}
		return deny(Unauthorized)
	case AdminOnly:
		if id.IsAdmin() {
			return allow()
		}
		return deny(Forbidden)
	case Authenticated:
		if r.needsVerified && !id.EmailVerified {
			return deny(EmailNotVerified)
		}
		return allow()
	}
	return deny(Forbidden)
}

// StatusCode maps a denial reason onto an HTTP status.
func (r Reason) StatusCode() int {
	switch r {
	case AuthenticationRequired, Unauthorized:
		return http.StatusUnauthorized
	case EmailNotVerified, Forbidden:
		return http.StatusForbidden
	default:
		return http.StatusForbidden
	}
}

// Message is the client-facing text for a denial.
func (r Reason) Message() string {
	switch r {
	case AuthenticationRequired:
		return "authentication required"
	case Unauthorized:
		return "you are not allowed to modify this resource"
	case EmailNotVerified:
		return "please verify your email address first"
	default:
		return "forbidden"
	}
}
