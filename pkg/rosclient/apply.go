package rosclient

import (
	"context"
	"fmt"
	"sort"

	"github.com/carverauto/netfabric/pkg/routeros"
)

// Apply runs an ordered mutation list against the device. It stops at
// the first failure so a broken dependency cannot cascade into the
// entries behind it.
func (c *Conn) Apply(ctx context.Context, mutations []routeros.Mutation) error {
	for i := range mutations {
		if err := ctx.Err(); err != nil {
			return err
		}

		if err := c.applyOne(&mutations[i]); err != nil {
			return fmt.Errorf("mutation %d/%d on %s: %w", i+1, len(mutations), mutations[i].Path, err)
		}
	}

	return nil
}

// applyOne translates a mutation into API sentences. Keyed updates and
// removals resolve the device's internal row id first; the API set and
// remove commands address rows by id, not by property match.
func (c *Conn) applyOne(m *routeros.Mutation) error {
	switch m.Op {
	case routeros.OpAdd:
		_, err := c.api.RunArgs(append([]string{"/" + m.Path + "/add"}, attributeWords(m.Set)...))

		return err
	case routeros.OpUpdate:
		words := []string{"/" + m.Path + "/set"}

		if len(m.Key) > 0 {
			id, err := c.findEntry(m.Path, m.Key)
			if err != nil {
				return err
			}

			words = append(words, "=.id="+id)
		}

		_, err := c.api.RunArgs(append(words, attributeWords(m.Set)...))

		return err
	case routeros.OpRemove:
		id, err := c.findEntry(m.Path, m.Key)
		if err != nil {
			return err
		}

		_, err = c.api.RunArgs([]string{"/" + m.Path + "/remove", "=.id=" + id})

		return err
	default:
		return fmt.Errorf("%w: %d", ErrUnknownMutationOp, m.Op)
	}
}

func (c *Conn) findEntry(path string, key map[string]string) (string, error) {
	words := append([]string{"/" + path + "/print", "=.proplist=.id"}, queryWords(key)...)

	reply, err := c.api.RunArgs(words)
	if err != nil {
		return "", err
	}

	if len(reply.Re) == 0 {
		return "", fmt.Errorf("%w: %s %v", ErrEntryNotFound, path, key)
	}

	if len(reply.Re) > 1 {
		return "", fmt.Errorf("%w: %s %v matched %d rows", ErrAmbiguousEntry, path, key, len(reply.Re))
	}

	id := reply.Re[0].Map[".id"]
	if id == "" {
		return "", fmt.Errorf("%w: %s %v", ErrEntryNotFound, path, key)
	}

	return id, nil
}

func attributeWords(fields map[string]string) []string {
	return prefixedWords("=", fields)
}

func queryWords(fields map[string]string) []string {
	return prefixedWords("?", fields)
}

// prefixedWords renders fields in alphabetical order so a mutation
// always produces the same sentence.
func prefixedWords(prefix string, fields map[string]string) []string {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}

	sort.Strings(names)

	words := make([]string, 0, len(names))
	for _, name := range names {
		words = append(words, prefix+name+"="+fields[name])
	}

	return words
}
