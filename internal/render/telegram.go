package render

import (
	"fmt"
	"html"
	"net/url"
	"strings"

	"github.com/exile-tools/poewiki-cli/internal/model"
)

// MessageLimit is Telegram's hard cap on message text length.
const MessageLimit = 4096

const wikiBaseURL = "https://www.poewiki.net/wiki/"

// WikiURL returns the poewiki.net page URL for an item name.
func WikiURL(name string) string {
	return wikiBaseURL + url.PathEscape(strings.ReplaceAll(name, " ", "_"))
}

// Telegram renders an item as Telegram HTML: hidden image link for the
// preview, bold linked name, italic class line, then stats, mods, stack
// effects, description and italic flavour text, skipping absent
// sections.
//
// When the rendering would exceed MessageLimit, the mods/description/
// flavour section is dropped first, the stats section second. The
// name/rarity header is never truncated.
func Telegram(item model.Item) string {
	header := telegramHeader(item)
	stats := telegramStats(item)
	extras := telegramExtras(item)

	msg := joinSections(header, stats, extras)
	if len(msg) <= MessageLimit {
		return msg
	}

	msg = joinSections(header, stats)
	if len(msg) <= MessageLimit {
		return msg
	}

	return joinSections(header)
}

// TelegramPlaceholder renders the minimal message sent on inline
// selection, before the detailed fetch completes.
func TelegramPlaceholder(item model.Item) string {
	return joinSections(telegramHeader(item), "<b><i>Loading full details...</i></b>")
}

func telegramHeader(item model.Item) string {
	var sb strings.Builder
	if item.ImageURL != "" {
		// Zero-width joiner link makes Telegram show the image preview
		// without visible link text.
		sb.WriteString(fmt.Sprintf("<a href=\"%s\">&#8205;</a>", html.EscapeString(item.ImageURL)))
	}
	sb.WriteString(fmt.Sprintf("<b><a href=\"%s\">%s</a></b>\n",
		html.EscapeString(WikiURL(item.Name)), html.EscapeString(item.Name)))

	sub := string(item.Rarity)
	if item.Class != "" {
		sub += " " + item.Class
	}
	sb.WriteString(fmt.Sprintf("<i>%s</i>", html.EscapeString(sub)))
	return sb.String()
}

func telegramStats(item model.Item) string {
	var lines []string
	for _, stat := range item.BaseStats {
		lines = append(lines, fmt.Sprintf("%s: %s",
			html.EscapeString(stat.Label), html.EscapeString(stat.Value)))
	}
	if item.RequiredLevel != "" {
		lines = append(lines, "Requires Level "+html.EscapeString(item.RequiredLevel))
	}
	return strings.Join(lines, "\n")
}

func telegramExtras(item model.Item) string {
	var sections []string

	if len(item.Mods) > 0 {
		escaped := make([]string, len(item.Mods))
		for i, m := range item.Mods {
			escaped[i] = html.EscapeString(m)
		}
		sections = append(sections, strings.Join(escaped, "\n"))
	}

	if len(item.StackEffects) > 0 {
		var lines []string
		for _, e := range item.StackEffects {
			if e.Threshold != "" {
				lines = append(lines, fmt.Sprintf("%s: %s",
					html.EscapeString(e.Threshold), html.EscapeString(e.Description)))
			} else {
				lines = append(lines, html.EscapeString(e.Description))
			}
		}
		sections = append(sections, strings.Join(lines, "\n"))
	}

	if item.Description != "" {
		sections = append(sections, html.EscapeString(item.Description))
	}
	if item.FlavourText != "" {
		sections = append(sections, "<i>"+html.EscapeString(item.FlavourText)+"</i>")
	}

	return strings.Join(sections, "\n\n")
}

func joinSections(sections ...string) string {
	var nonEmpty []string
	for _, s := range sections {
		if s != "" {
			nonEmpty = append(nonEmpty, s)
		}
	}
	return strings.Join(nonEmpty, "\n\n")
}
