// Package seed loads built-in lesson packs from YAML files and installs them
// as the shared starter library.
package seed

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ALehav1/language-app-sub001/internal/model"
	"github.com/ALehav1/language-app-sub001/internal/repository"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

// LibraryUserID owns the seeded lessons. It is a reserved id, never issued to
// a registered account.
var LibraryUserID = uuid.Nil

type packFile struct {
	Lessons []Lesson `yaml:"lessons"`
}

type Lesson struct {
	Title    string     `yaml:"title"`
	Language string     `yaml:"language"`
	Items    []Item `yaml:"items"`
}

type Item struct {
	Term            string `yaml:"term"`
	Translation     string `yaml:"translation"`
	Transliteration string `yaml:"transliteration"`
}

// LoadDir parses every .yaml/.yml file in dir. Files are read in name order
// so packs install deterministically.
func LoadDir(dir string) ([]Lesson, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("seed: read dir: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if ext == ".yaml" || ext == ".yml" {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	var lessons []Lesson
	for _, name := range names {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("seed: read %s: %w", name, err)
		}
		var pack packFile
		if err := yaml.Unmarshal(data, &pack); err != nil {
			return nil, fmt.Errorf("seed: parse %s: %w", name, err)
		}
		for i, lesson := range pack.Lessons {
			if err := validateLesson(lesson); err != nil {
				return nil, fmt.Errorf("seed: %s lesson %d: %w", name, i+1, err)
			}
		}
		lessons = append(lessons, pack.Lessons...)
	}
	return lessons, nil
}

func validateLesson(l Lesson) error {
	if strings.TrimSpace(l.Title) == "" {
		return fmt.Errorf("title is required")
	}
	if l.Language != "arabic" && l.Language != "spanish" {
		return fmt.Errorf("unsupported language %q", l.Language)
	}
	if len(l.Items) == 0 {
		return fmt.Errorf("lesson has no items")
	}
	for j, it := range l.Items {
		if strings.TrimSpace(it.Term) == "" || strings.TrimSpace(it.Translation) == "" {
			return fmt.Errorf("item %d: term and translation are required", j+1)
		}
	}
	return nil
}

// Apply installs the packs from dir that are not already present, matching by
// title. Re-running at every startup is safe.
func Apply(ctx context.Context, db *gorm.DB, lessonRepo repository.LessonRepository, itemRepo repository.ItemRepository, dir string, logger *slog.Logger) error {
	lessons, err := LoadDir(dir)
	if err != nil {
		return err
	}

	existing, err := lessonRepo.FindByUser(ctx, db, LibraryUserID)
	if err != nil {
		return fmt.Errorf("seed: list library lessons: %w", err)
	}
	installed := make(map[string]bool, len(existing))
	for _, l := range existing {
		installed[l.Title] = true
	}

	for _, pack := range lessons {
		if installed[pack.Title] {
			continue
		}

		lesson := &model.Lesson{
			LessonID: uuid.New(),
			UserID:   LibraryUserID,
			Title:    pack.Title,
			Language: pack.Language,
			Kind:     "seed",
		}
		items := make([]*model.VocabItem, 0, len(pack.Items))
		for _, it := range pack.Items {
			items = append(items, &model.VocabItem{
				ItemID:          uuid.New(),
				LessonID:        lesson.LessonID,
				Term:            it.Term,
				Translation:     it.Translation,
				Transliteration: it.Transliteration,
				Language:        pack.Language,
			})
		}

		err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := lessonRepo.Create(ctx, tx, lesson); err != nil {
				return err
			}
			return itemRepo.CreateBatch(ctx, tx, items)
		})
		if err != nil {
			return fmt.Errorf("seed: install %q: %w", pack.Title, err)
		}
		logger.Info("Installed seed lesson", "title", pack.Title, "items", len(items))
	}
	return nil
}
