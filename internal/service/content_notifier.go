package service

import "context"

// ContentNotifier is told when admins change public content.
type ContentNotifier interface {
	ContentChanged(ctx context.Context, kind, id, action string)
}

// Content kinds and actions carried by content_changed events.
const (
	KindBlog        = "blog"
	KindPage        = "page"
	KindCourse      = "course"
	KindTestimonial = "testimonial"
	KindSettings    = "settings"

	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

func notifyContent(ctx context.Context, n ContentNotifier, kind, id, action string) {
	if n != nil {
		n.ContentChanged(ctx, kind, id, action)
	}
}
