package logger

import (
	"log/slog"
	"strconv"
)

// Error logs err under "error". A nil error yields an empty attribute,
// which slog drops.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// Errors groups the non-nil errors under "errors".
func Errors(errs ...error) slog.Attr {
	as := make([]slog.Attr, 0, len(errs))
	for i, err := range errs {
		if err != nil {
			as = append(as, slog.Any(strconv.Itoa(i), err))
		}
	}
	if len(as) == 0 {
		return slog.Attr{}
	}
	return slog.Attr{Key: "errors", Value: slog.GroupValue(as...)}
}

// Group is a shorthand for a named attribute group.
func Group(name string, attrs ...slog.Attr) slog.Attr {
	return slog.Attr{Key: name, Value: slog.GroupValue(attrs...)}
}

func UserID(id any) slog.Attr      { return optional("user_id", id) }
func ProjectID(id any) slog.Attr   { return optional("project_id", id) }
func TaskID(id any) slog.Attr      { return optional("task_id", id) }
func TeamID(id any) slog.Attr      { return optional("team_id", id) }
func PlanID(id any) slog.Attr      { return optional("plan_id", id) }
func ProductRef(ref any) slog.Attr { return optional("product_ref", ref) }
func Role(role any) slog.Attr      { return optional("role", role) }

// Seq records a refresh sequence number.
func Seq(n uint64) slog.Attr {
	return slog.Uint64("seq", n)
}

// Phase records a lifecycle phase name.
func Phase(name string) slog.Attr {
	return slog.String("phase", name)
}

// Component names the subsystem emitting the record.
func Component(name string) slog.Attr {
	return slog.String("component", name)
}

// Event names what happened, e.g. "checkout.created".
func Event(name string) slog.Attr {
	return slog.String("event", name)
}

// Provider names the payment or storage backend involved.
func Provider(name string) slog.Attr {
	return slog.String("provider", name)
}

// Duration records an elapsed time.
func Duration(d any) slog.Attr {
	return slog.Any("duration", d)
}

func optional(key string, v any) slog.Attr {
	if v == nil {
		return slog.Attr{}
	}
	if s, ok := v.(string); ok && s == "" {
		return slog.Attr{}
	}
	return slog.Any(key, v)
}
