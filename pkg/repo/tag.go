package repo

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/odvcencio/wyag/pkg/object"
)

const tagRefPrefix = "refs/tags/"

// CreateTag creates or updates a lightweight tag ref under refs/tags/.
func (r *Repo) CreateTag(name string, target object.Hash, force bool) error {
	name = strings.TrimSpace(name)
	if err := validateTagName(name); err != nil {
		return fmt.Errorf("create tag: %w", err)
	}
	if !r.Store.Has(target) {
		return fmt.Errorf("create tag: target %s: %w", target, object.ErrObjectNotFound)
	}
	if err := r.writeTagRef(name, target, force); err != nil {
		return fmt.Errorf("create tag: %w", err)
	}
	return nil
}

// CreateAnnotatedTag stores a tag object annotating target and points
// refs/tags/<name> at it. It returns the tag object's id.
func (r *Repo) CreateAnnotatedTag(name string, target object.Hash, tagger, message string, force bool) (object.Hash, error) {
	name = strings.TrimSpace(name)
	if err := validateTagName(name); err != nil {
		return "", fmt.Errorf("create annotated tag: %w", err)
	}
	tagger = strings.TrimSpace(tagger)
	if tagger == "" {
		tagger = "unknown"
	}

	targetType, _, err := r.Store.ReadRaw(target)
	if err != nil {
		return "", fmt.Errorf("create annotated tag: read target %s: %w", target, err)
	}

	tag := &object.Tag{}
	tag.Add("object", []byte(target))
	tag.Add("type", []byte(targetType))
	tag.Add("tag", []byte(name))
	tag.Add("tagger", []byte(formatSignature(tagger, r.now())))
	tag.Message = []byte(normalizeMessage(message))

	tagHash, err := r.Store.WriteTag(tag)
	if err != nil {
		return "", fmt.Errorf("create annotated tag: write tag object: %w", err)
	}
	if err := r.writeTagRef(name, tagHash, force); err != nil {
		return "", fmt.Errorf("create annotated tag: %w", err)
	}
	return tagHash, nil
}

func (r *Repo) writeTagRef(name string, h object.Hash, force bool) error {
	refName := tagRefPrefix + name
	if force {
		return r.UpdateRef(refName, h)
	}
	if err := r.UpdateRefCAS(refName, h, ""); err != nil {
		if errors.Is(err, ErrRefCASMismatch) {
			return fmt.Errorf("tag %q already exists", name)
		}
		return err
	}
	return nil
}

// DeleteTag removes a tag ref from refs/tags/.
func (r *Repo) DeleteTag(name string) error {
	name = strings.TrimSpace(name)
	if err := validateTagName(name); err != nil {
		return fmt.Errorf("delete tag: %w", err)
	}
	if err := r.DeleteRef(tagRefPrefix + name); err != nil {
		return fmt.Errorf("delete tag: %w", err)
	}
	return nil
}

// ListTags returns tag names in sorted order, nested names joined with "/".
func (r *Repo) ListTags() ([]RefEntry, error) {
	return r.listUnder("tags")
}

// listUnder flattens the children of refs/<dir>.
func (r *Repo) listUnder(dir string) ([]RefEntry, error) {
	root, err := r.ListRefs()
	if err != nil {
		return nil, err
	}
	node := root.Child(dir)
	if node == nil || !node.IsDir {
		return nil, nil
	}
	return node.Flatten(""), nil
}

func validateTagName(name string) error {
	if name == "" {
		return fmt.Errorf("tag name is required")
	}
	if err := validateRefName(tagRefPrefix + name); err != nil {
		return fmt.Errorf("invalid tag name %q", name)
	}
	return nil
}

// formatSignature renders "name unix-seconds +hhmm" as used by the
// author, committer and tagger headers.
func formatSignature(who string, when time.Time) string {
	return fmt.Sprintf("%s %d %s", who, when.Unix(), formatTimezoneOffset(when))
}

func formatTimezoneOffset(t time.Time) string {
	_, offset := t.Zone()
	sign := "+"
	if offset < 0 {
		sign = "-"
		offset = -offset
	}
	hours := offset / 3600
	minutes := (offset % 3600) / 60
	return fmt.Sprintf("%s%02d%02d", sign, hours, minutes)
}

// normalizeMessage ensures a message ends with exactly one newline.
func normalizeMessage(msg string) string {
	msg = strings.TrimRight(msg, "\n")
	if msg == "" {
		return ""
	}
	return msg + "\n"
}
