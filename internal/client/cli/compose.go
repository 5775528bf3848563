package cli

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/DAC098/tj2/internal/client/models"
)

// NewEntry prompts for the entry fields and opens it as the current draft.
func (a *App) NewEntry(ctx context.Context) error {
	title, err := getSimpleText(a.reader, "Title", os.Stdout)
	if err != nil {
		return err
	}

	dateText, err := getSimpleText(a.reader, "Date (YYYY-MM-DD, empty for today)", os.Stdout)
	if err != nil {
		return err
	}
	day := time.Now().UTC().Truncate(24 * time.Hour)
	if dateText != "" {
		day, err = time.Parse("2006-01-02", dateText)
		if err != nil {
			printlnFn("invalid date:", err.Error())
			return err
		}
	}

	contents, err := GetMultiline(a.reader, "Contents", os.Stdout)
	if err != nil {
		return err
	}

	tagLines, err := GetLines(a.reader, "Tags, one per line as name or name=value", os.Stdout)
	if err != nil {
		return err
	}

	fieldLines, err := GetLines(a.reader, "Custom fields, one per line as name=value", os.Stdout)
	if err != nil {
		return err
	}

	entry := models.NewEntry(day)
	entry.Title = title
	entry.Contents = contents
	entry.Tags = models.TagsFromStrings(tagLines)
	for _, line := range fieldLines {
		name, value, ok := strings.Cut(line, "=")
		if !ok {
			printlnFn("skipping custom field (want name=value):", line)
			continue
		}
		entry.CustomFields = append(entry.CustomFields, models.CustomField{Name: name, Value: value})
	}

	if err := a.entryService.CreateDraft(ctx, entry); err != nil {
		printlnFn("failed to create entry:", err.Error())
		return err
	}

	a.draft = entry
	printlnFn("Draft created:", entry.Id)
	return nil
}

// Open makes an existing entry the current draft.
func (a *App) Open(ctx context.Context, args []string) error {
	if len(args) == 0 {
		printlnFn("Usage: open <id>")
		return nil
	}

	entry, err := a.entryService.Get(ctx, args[0])
	if err != nil {
		printlnFn("failed to open entry:", err.Error())
		return err
	}

	a.draft = entry
	printlnFn("Opened:", entry.Id, entry.Title)
	return nil
}
