package voevent

// Handler processes one notice. payload is the raw document exactly as
// received. A returned error is logged and reported but never affects the
// connection or the other handlers.
type Handler func(payload []byte, notice *Notice) error

// ExceptionHandler receives payloads that could not be parsed into a notice.
type ExceptionHandler func(payload []byte, err error)

// Predicate decides whether a registration wants a notice type.
type Predicate func(NoticeType) bool

// Registration pairs a predicate with a handler.
type Registration struct {
	Match   Predicate
	Handler Handler
}

// matches reports whether the registration accepts t. A nil predicate accepts everything.
func (r Registration) matches(t NoticeType) bool {
	return r.Match == nil || r.Match(t)
}

func noticeTypeSet(types []NoticeType) map[NoticeType]struct{} {
	set := make(map[NoticeType]struct{}, len(types))
	for _, t := range types {
		set[t] = struct{}{}
	}
	return set
}

// IncludeNoticeTypes registers h for the given notice types only.
func IncludeNoticeTypes(h Handler, types ...NoticeType) Registration {
	set := noticeTypeSet(types)
	return Registration{
		Match: func(t NoticeType) bool {
			_, ok := set[t]
			return ok
		},
		Handler: h,
	}
}

// ExcludeNoticeTypes registers h for every notice type except the given ones.
func ExcludeNoticeTypes(h Handler, types ...NoticeType) Registration {
	set := noticeTypeSet(types)
	return Registration{
		Match: func(t NoticeType) bool {
			_, ok := set[t]
			return !ok
		},
		Handler: h,
	}
}

// AllNotices registers h for every notice.
func AllNotices(h Handler) Registration {
	return Registration{Handler: h}
}
