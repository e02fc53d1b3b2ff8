package usage

// Plan is the subscription tier of a user
type Plan string

const (
	PlanFree    Plan = "free"
	PlanPremium Plan = "premium"
)

// Operation identifies one of the generation endpoints
type Operation string

const (
	OpArticle           Operation = "article"
	OpBlogTitles        Operation = "blog-titles"
	OpImage             Operation = "image"
	OpBackgroundRemoval Operation = "background-removal"
	OpObjectRemoval     Operation = "object-removal"
	OpResumeReview      Operation = "resume-review"
)

// FreeLimit is the number of counter-gated generations a free user gets
const FreeLimit = 10

// Fixed denial messages returned with a 403
const (
	MsgFreeLimitReached = "You have reached your free usage limit."
	MsgPremiumRequired  = "Become a premium user to generate images :)."
)

// counterGated reports whether the operation is limited by the free usage
// counter rather than being premium-only.
func counterGated(op Operation) bool {
	return op == OpArticle || op == OpBlogTitles
}

// Allow decides whether a user on the given plan with the given free usage
// count may run the operation. The returned message is the fixed denial
// reason, empty when allowed.
func Allow(plan Plan, freeUsage int, op Operation) (bool, string) {
	if plan == PlanPremium {
		return true, ""
	}
	if counterGated(op) {
		if freeUsage >= FreeLimit {
			return false, MsgFreeLimitReached
		}
		return true, ""
	}
	return false, MsgPremiumRequired
}

// ShouldIncrement reports whether a successful run of the operation must bump
// the free usage counter. Image and document operations never count against
// the free tier.
func ShouldIncrement(plan Plan, op Operation) bool {
	return plan != PlanPremium && counterGated(op)
}
