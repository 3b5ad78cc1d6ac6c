package server

import (
	"context"
	"html/template"
	"net/http"
	"strings"

	"giftfinder/internal/core"
	"giftfinder/internal/pipeline"
)

// Publisher is the slice of the pipeline the admin form needs.
type Publisher interface {
	Publish(ctx context.Context, facts core.ProductFacts) (*core.PublishResult, error)
}

var formTemplate = template.Must(template.New("admin_form").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8" />
  <title>giftfinder admin</title>
</head>
<body>
  <h1>Add a product page</h1>
  {{if .Message}}<p class="{{if .OK}}ok{{else}}error{{end}}">{{.Message}}</p>{{end}}
  <form method="post" action="/">
    <label>Title <input name="title" value="{{.Form.Title}}" /></label>
    <label>Category
      <select name="category">
        {{range .Categories}}<option value="{{.}}">{{.}}</option>{{end}}
      </select>
    </label>
    <label>Affiliate link <input name="amazon_link" value="{{.Form.AffiliateLink}}" /></label>
    <label>NZ note <input name="nz_note" value="{{.Form.Note}}" /></label>
    <label>Image 1 <input name="image1" /></label>
    <label>Image 2 <input name="image2" /></label>
    <label>Image 3 <input name="image3" /></label>
    <label>Image alt <input name="image_alt" value="{{.Form.ImageAlt}}" /></label>
    <label>Details <textarea name="details">{{.Form.RawDetails}}</textarea></label>
    <button type="submit">Generate page</button>
  </form>
</body>
</html>
`))

type formPage struct {
	Categories []string
	Message    string
	OK         bool
	Form       core.ProductFacts
}

func (s *Server) handleForm(w http.ResponseWriter, r *http.Request) {
	s.renderForm(w, formPage{Categories: s.cfg.Site.AllowedCategories})
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form submission", http.StatusBadRequest)
		return
	}

	facts := core.ProductFacts{
		Title:         r.PostFormValue("title"),
		Category:      r.PostFormValue("category"),
		AffiliateLink: r.PostFormValue("amazon_link"),
		Note:          r.PostFormValue("nz_note"),
		RawDetails:    r.PostFormValue("details"),
		ImageAlt:      r.PostFormValue("image_alt"),
	}
	for _, field := range []string{"image1", "image2", "image3"} {
		if img := strings.TrimSpace(r.PostFormValue(field)); img != "" {
			facts.Images = append(facts.Images, img)
		}
	}

	page := formPage{Categories: s.cfg.Site.AllowedCategories, Form: facts}

	result, err := s.publisher.Publish(r.Context(), facts)
	if err != nil {
		// The operation boundary reports one "{kind}: {message}" line; the
		// form shows it as-is and keeps the submitted values.
		page.Message = pipeline.Describe(err)
		s.log.Warn().Str("error", page.Message).Msg("publish rejected")
	} else {
		page.OK = true
		page.Message = "Created " + result.PagePath
		page.Form = core.ProductFacts{}
	}

	s.renderForm(w, page)
}

func (s *Server) renderForm(w http.ResponseWriter, page formPage) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := formTemplate.Execute(w, page); err != nil {
		s.log.Error().Err(err).Msg("failed to render admin form")
	}
}
