package rewrite

// RequestKind flags the request contexts in which the document must never be rewritten.
type RequestKind struct {
	Admin  bool
	Ajax   bool
	Cron   bool
	REST   bool
	XMLRPC bool
	Feed   bool
	Robots bool
}

// Guard reports whether a request of kind may be captured and rewritten.
func Guard(kind RequestKind) bool {
	return !(kind.Admin || kind.Ajax || kind.Cron || kind.REST || kind.XMLRPC || kind.Feed || kind.Robots)
}

// Reason names the first flag that blocks the rewrite, or "" when none does.
func (k RequestKind) Reason() string {
	switch {
	case k.Admin:
		return "admin"
	case k.Ajax:
		return "ajax"
	case k.Cron:
		return "cron"
	case k.REST:
		return "rest"
	case k.XMLRPC:
		return "xmlrpc"
	case k.Feed:
		return "feed"
	case k.Robots:
		return "robots"
	default:
		return ""
	}
}
