// Package catalog holds the read-only question bank grouped by subject.
package catalog

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

//go:embed subjects/*.yml
var embeddedSubjects embed.FS

// questionNamespace scopes the name-based question IDs generated for questions without an explicit id.
var questionNamespace = uuid.MustParse("6f1c2b9e-4a51-4f0d-9a55-0d6f3f7b8c21")

var ErrUnknownSubject = errors.New("unknown subject")

type Difficulty string

const (
	DifficultyBeginner     Difficulty = "beginner"
	DifficultyIntermediate Difficulty = "intermediate"
	DifficultyAdvanced     Difficulty = "advanced"
)

// Difficulties lists the known difficulty labels from easiest to hardest.
var Difficulties = []Difficulty{DifficultyBeginner, DifficultyIntermediate, DifficultyAdvanced}

type Question struct {
	ID          string     `yaml:"id,omitempty" json:"id"`
	Question    string     `yaml:"question" json:"question" validate:"required"`
	Options     []string   `yaml:"options" json:"options" validate:"len=4,dive,required"`
	Correct     int        `yaml:"correct" json:"correct" validate:"min=0,max=3"`
	Explanation string     `yaml:"explanation" json:"explanation"`
	Difficulty  Difficulty `yaml:"difficulty" json:"difficulty" validate:"oneof=beginner intermediate advanced"`
	Topic       string     `yaml:"topic" json:"topic" validate:"required"`
	Subject     string     `yaml:"-" json:"subject"`
}

// CorrectOption returns the text of the correct option.
func (q Question) CorrectOption() string {
	if q.Correct < 0 || q.Correct >= len(q.Options) {
		return ""
	}
	return q.Options[q.Correct]
}

type Subject struct {
	Key         string     `yaml:"key" json:"key" validate:"required"`
	Name        string     `yaml:"name" json:"name" validate:"required"`
	Icon        string     `yaml:"icon" json:"icon"`
	Description string     `yaml:"description" json:"description"`
	Difficulty  string     `yaml:"difficulty" json:"difficulty"`
	Color       string     `yaml:"color" json:"color"`
	Topics      []string   `yaml:"topics" json:"topics"`
	Questions   []Question `yaml:"questions" json:"questions" validate:"dive"`
}

// Catalog is immutable once built. Question slices returned from it are shared and must not be modified.
type Catalog struct {
	subjects map[string]Subject
	keys     []string
}

// New validates the subjects and assigns stable question IDs.
func New(subjects ...Subject) (*Catalog, error) {
	v, err := newValidator()
	if err != nil {
		return nil, err
	}

	c := &Catalog{
		subjects: make(map[string]Subject, len(subjects)),
	}
	var errs []error
	for _, subject := range subjects {
		if _, ok := c.subjects[subject.Key]; ok {
			errs = append(errs, fmt.Errorf("subject %q is defined more than once", subject.Key))
			continue
		}
		prepared, err := prepareSubject(subject)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if err := v.check(prepared); err != nil {
			errs = append(errs, fmt.Errorf("subject %q: %w", subject.Key, err))
			continue
		}
		c.subjects[prepared.Key] = prepared
		c.keys = append(c.keys, prepared.Key)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	sort.Strings(c.keys)
	return c, nil
}

func prepareSubject(subject Subject) (Subject, error) {
	questions := make([]Question, len(subject.Questions))
	seen := make(map[string]int, len(subject.Questions))
	for i, q := range subject.Questions {
		q.Subject = subject.Key
		if q.ID == "" {
			q.ID = uuid.NewSHA1(questionNamespace, []byte(subject.Key+"\x00"+q.Question)).String()
		}
		if prev, ok := seen[q.ID]; ok {
			return Subject{}, fmt.Errorf("subject %q: questions[%d] has the same id as questions[%d]: %s", subject.Key, i, prev, q.ID)
		}
		seen[q.ID] = i
		questions[i] = q
	}
	subject.Questions = questions
	return subject, nil
}

// LoadDefault loads the catalog bundled into the binary.
func LoadDefault() (*Catalog, error) {
	sub, err := fs.Sub(embeddedSubjects, "subjects")
	if err != nil {
		return nil, fmt.Errorf("fs.Sub() > %w", err)
	}
	return LoadFS(sub)
}

// LoadDirectory loads every *.yml file in dir as one subject.
func LoadDirectory(dir string) (*Catalog, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("os.Stat(%s) > %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", dir)
	}
	return LoadFS(os.DirFS(dir))
}

func LoadFS(fsys fs.FS) (*Catalog, error) {
	paths, err := fs.Glob(fsys, "*.yml")
	if err != nil {
		return nil, fmt.Errorf("fs.Glob() > %w", err)
	}
	if len(paths) == 0 {
		return nil, errors.New("no subject files (*.yml) found")
	}

	subjects := make([]Subject, 0, len(paths))
	for _, path := range paths {
		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return nil, fmt.Errorf("fs.ReadFile(%s) > %w", path, err)
		}
		var subject Subject
		if err := yaml.Unmarshal(data, &subject); err != nil {
			return nil, fmt.Errorf("yaml.Unmarshal(%s) > %w", path, err)
		}
		if subject.Key == "" {
			subject.Key = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		}
		subjects = append(subjects, subject)
	}
	return New(subjects...)
}

func (c *Catalog) Subject(key string) (Subject, bool) {
	s, ok := c.subjects[key]
	return s, ok
}

// Subjects returns all subjects ordered by key.
func (c *Catalog) Subjects() []Subject {
	result := make([]Subject, 0, len(c.keys))
	for _, key := range c.keys {
		result = append(result, c.subjects[key])
	}
	return result
}

func (c *Catalog) Keys() []string {
	return append([]string(nil), c.keys...)
}

// FindMentioned returns the first subject whose name or key appears in text.
// Matching ignores case and treats spaces and underscores as optional.
func (c *Catalog) FindMentioned(text string) (Subject, bool) {
	normalized := compact(text)
	for _, key := range c.keys {
		subject := c.subjects[key]
		if strings.Contains(normalized, compact(subject.Name)) || strings.Contains(normalized, compact(subject.Key)) {
			return subject, true
		}
	}
	return Subject{}, false
}

func compact(s string) string {
	return strings.NewReplacer(" ", "", "_", "", "-", "").Replace(strings.ToLower(s))
}
