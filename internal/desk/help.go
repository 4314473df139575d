// ABOUTME: Help pages rendered from embedded Markdown with goldmark
// ABOUTME: Topics are the files under docs/help; unknown topics answer 404

package desk

import (
	"bytes"
	"html/template"
	"net/http"
	"path"
	"sort"
	"strings"

	"github.com/yuin/goldmark"
)

const defaultHelpTopic = "getting-started"

// helpTopicOrder fixes the sidebar order; unlisted topics sort last by slug
var helpTopicOrder = map[string]int{
	"getting-started": 1,
	"visitors":        2,
	"residents":       3,
	"security-logs":   4,
	"accounts":        5,
}

func (d *Desk) handleHelp(w http.ResponseWriter, r *http.Request) {
	selected := r.PathValue("topic")
	if selected == "" {
		selected = defaultHelpTopic
	}

	topics, err := listHelpTopics(selected)
	if err != nil {
		d.serverError(w, r, "failed to read help docs", err)
		return
	}

	known := false
	for _, t := range topics {
		if t.Slug == selected {
			known = true
			break
		}
	}
	if !known {
		http.NotFound(w, r)
		return
	}

	mdContent, err := helpDocsFS.ReadFile(path.Join("docs/help", selected+".md"))
	if err != nil {
		d.serverError(w, r, "failed to read help topic", err)
		return
	}

	var htmlBuf bytes.Buffer
	if err := goldmark.Convert(mdContent, &htmlBuf); err != nil {
		d.logger.Error("failed to convert markdown", "topic", selected, "error", err)
		htmlBuf.Reset()
		htmlBuf.WriteString("<p>Failed to render help content.</p>")
	}

	data := helpData{
		pageData: d.newPageData(w, r, "Help", "help"),
		Topics:   topics,
		Content:  template.HTML(htmlBuf.String()),
	}
	d.render(w, http.StatusOK, "help.html", data)
}

// listHelpTopics returns the embedded topics in display order
func listHelpTopics(selected string) ([]helpTopic, error) {
	entries, err := helpDocsFS.ReadDir("docs/help")
	if err != nil {
		return nil, err
	}

	var topics []helpTopic
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".md") {
			continue
		}
		slug := strings.TrimSuffix(entry.Name(), ".md")
		topics = append(topics, helpTopic{
			Slug:   slug,
			Title:  formatHelpTitle(slug),
			Active: slug == selected,
		})
	}

	sort.Slice(topics, func(i, j int) bool {
		orderI, okI := helpTopicOrder[topics[i].Slug]
		orderJ, okJ := helpTopicOrder[topics[j].Slug]
		if !okI {
			orderI = 100
		}
		if !okJ {
			orderJ = 100
		}
		if orderI != orderJ {
			return orderI < orderJ
		}
		return topics[i].Slug < topics[j].Slug
	})

	return topics, nil
}

// formatHelpTitle converts a slug to a display title
func formatHelpTitle(slug string) string {
	words := strings.Split(slug, "-")
	for i, word := range words {
		if word == "" {
			continue
		}
		words[i] = strings.ToUpper(word[:1]) + word[1:]
	}
	return strings.Join(words, " ")
}
