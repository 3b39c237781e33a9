package cache

import (
	"context"
	"time"
)

// Like counts and liked states are never cached; they are always read from the store.
const (
	BlogKeyPrefix   = "blog:"
	PageKeyPrefix   = "page:"
	CourseKeyPrefix = "course:"
	CourseListKey   = "courses:all"
	TestimonialsKey = "testimonials:all"
	SettingsKey     = "settings:site"
	UserKeyPrefix   = "user:"
)

const (
	BlogTTL        = 30 * time.Minute
	PageTTL        = 30 * time.Minute
	CourseTTL      = 10 * time.Minute
	TestimonialTTL = 10 * time.Minute
	SettingsTTL    = 5 * time.Minute
	UserTTL        = 5 * time.Minute
)

func BlogKey(slug string) string {
	return BlogKeyPrefix + slug
}

func PageKey(slug string) string {
	return PageKeyPrefix + slug
}

func CourseKey(slug string) string {
	return CourseKeyPrefix + slug
}

func UserKey(uid string) string {
	return UserKeyPrefix + uid
}

// Invalidate deletes the given keys; a nil client makes it a no-op.
func Invalidate(ctx context.Context, keys ...string) {
	if client != nil && len(keys) > 0 {
		client.Del(ctx, keys...)
	}
}

func InvalidateCourse(ctx context.Context, slug string) {
	Invalidate(ctx, CourseKey(slug), CourseListKey)
}
