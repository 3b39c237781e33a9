package models

// HomePage is everything the landing page needs in one response.
type HomePage struct {
	Posts        []*BlogPost    `json:"posts"`
	Courses      []*Course      `json:"courses"`
	Testimonials []*Testimonial `json:"testimonials"`
	Settings     SiteSettings   `json:"settings"`
}

// Dashboard is the admin overview.
type Dashboard struct {
	TotalCourses      int64       `json:"total_courses"`
	TotalBlogs        int64       `json:"total_blogs"`
	TotalTestimonials int64       `json:"total_testimonials"`
	TotalEnrollments  int64       `json:"total_enrollments"`
	TotalRevenue      float64     `json:"total_revenue"`
	RecentPosts       []*BlogPost `json:"recent_posts"`
}
