package blogservice

import (
	"strings"

	"github.com/sushihentaime/blogcontent/internal/common"
)

const maxTitleLength = 200

func validateTitle(v *common.Validator, title string) {
	v.Check(strings.TrimSpace(title) != "", "title", "must be provided")
	v.Check(v.CheckStringLength(title, 0, maxTitleLength), "title", "must not be more than 200 characters long")
}

func validateContent(v *common.Validator, content string) {
	v.Check(strings.TrimSpace(content) != "", "content", "must be provided")
}

func validateAuthor(v *common.Validator, author int64) {
	v.Check(author > 0, "author", "must be provided")
}

func validateImageURL(v *common.Validator, imageURL *string) {
	if imageURL == nil || *imageURL == "" {
		return
	}
	v.Check(v.CheckURL(*imageURL), "imageUrl", "must be a valid http or https URL")
}

func validateRefs(v *common.Validator, ids []int64, field string) {
	for _, id := range ids {
		if id <= 0 {
			v.AddError(field, "must only contain positive ids")
			return
		}
	}
}

func validateBlogInput(v *common.Validator, in *BlogInput) {
	validateTitle(v, in.Title)
	validateContent(v, in.Content)
	validateAuthor(v, in.Author)
	validateImageURL(v, in.ImageURL)
	validateRefs(v, in.Categories, "categories")
	validateRefs(v, in.Tags, "tags")
}

// validateBlogPatch checks only the fields present in the patch.
func validateBlogPatch(v *common.Validator, p *BlogPatch) {
	if p.empty() {
		v.AddError("body", "must contain at least one field to update")
		return
	}
	if p.Title != nil {
		validateTitle(v, *p.Title)
	}
	if p.Content != nil {
		validateContent(v, *p.Content)
	}
	if p.Author != nil {
		validateAuthor(v, *p.Author)
	}
	validateImageURL(v, p.ImageURL)
	if p.Categories != nil {
		validateRefs(v, *p.Categories, "categories")
	}
	if p.Tags != nil {
		validateRefs(v, *p.Tags, "tags")
	}
}

func validateTermName(v *common.Validator, name string) {
	v.Check(strings.TrimSpace(name) != "", "name", "must be provided")
	v.Check(v.CheckStringLength(name, 0, 50), "name", "must not be more than 50 characters long")
}
