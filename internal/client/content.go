package client

import (
	"context"
	"net/url"
	"strings"

	"github.com/polkiloo/webpot/internal/domain/model"
	"github.com/polkiloo/webpot/internal/server/http/dto"
)

// Testimonial is an approved review shown on the public pages.
type Testimonial struct {
	Name    string
	Service string
	Rating  int
	Comment string
}

// Stars renders the rating as filled stars.
func (t Testimonial) Stars() string {
	if !model.ValidRating(t.Rating) {
		return ""
	}
	return strings.Repeat("★", t.Rating)
}

// Reviews reads published testimonials.
type Reviews struct {
	app *App
}

// Public returns approved reviews, newest first.
func (r *Reviews) Public(ctx context.Context) ([]Testimonial, error) {
	query := url.Values{}
	query.Set("action", "get_public_reviews")

	var resp dto.ReviewsResponse
	if err := r.app.backend.Get(ctx, "", query, &resp); err != nil {
		return nil, err
	}
	out := make([]Testimonial, 0, len(resp.Reviews))
	for _, rv := range resp.Reviews {
		out = append(out, Testimonial{Name: rv.Name, Service: rv.Service, Rating: rv.Rating, Comment: rv.Comment})
	}
	return out, nil
}

// ContactForm is the inquiry form. Phone is optional.
type ContactForm struct {
	Name    string
	Email   string
	Phone   string
	Message string
}

// Contact sends inquiries to the studio.
type Contact struct {
	app   *App
	guard Guard
}

type contactPayload struct {
	Action string `json:"action"`
	dto.ContactRequest
}

// Submit validates form and sends it. The returned message confirms receipt.
func (c *Contact) Submit(ctx context.Context, form ContactForm) (string, error) {
	if err := requireFields("name", form.Name, "email", form.Email, "message", form.Message); err != nil {
		return "", err
	}

	release, err := c.guard.Acquire()
	if err != nil {
		return "", err
	}
	defer release()

	var resp dto.Response
	err = c.app.backend.Post(ctx, "", contactPayload{
		Action: "contact",
		ContactRequest: dto.ContactRequest{
			Name:    strings.TrimSpace(form.Name),
			Email:   strings.TrimSpace(form.Email),
			Phone:   strings.TrimSpace(form.Phone),
			Message: strings.TrimSpace(form.Message),
		},
	}, &resp)
	if err != nil {
		return "", err
	}
	return resp.Message, nil
}
