// Package docs embeds the user documentation of the dge command.
//
// readme.md is the index: every other topic is listed there as a
// "* name: summary" line, in reading order.
package docs

import (
	"bufio"
	"bytes"
	"embed"
	"fmt"
	"io/fs"
	"path"
	"regexp"
	"slices"
	"sort"
	"strings"
)

//go:embed *.md
var files embed.FS

// Readme is the index topic, shown when no topic is asked for.
const Readme = "readme"

// indexEntry matches a topic line of the readme.
var indexEntry = regexp.MustCompile(`^\*\s+([a-z]+):`)

// GetTopic returns the content of a documentation topic. Topic names are case
// insensitive, the empty topic is the readme and "*" is every topic.
func GetTopic(topic string) (string, error) {
	topic = strings.ToLower(strings.TrimSpace(topic))
	switch topic {
	case "":
		topic = Readme
	case "*":
		topics, err := GetAllTopics()
		if err != nil {
			return "", err
		}
		return GetTopics(topics...)
	}
	content, err := files.ReadFile(topic + ".md")
	if err != nil {
		return "", fmt.Errorf("unknown topic %q, see \"dge topic\": %w", topic, err)
	}
	return string(content), nil
}

// GetTopics returns the topics one after the other. No topic is the readme.
func GetTopics(topics ...string) (string, error) {
	if len(topics) == 0 {
		topics = []string{Readme}
	}
	var b bytes.Buffer
	for _, topic := range topics {
		content, err := GetTopic(topic)
		if err != nil {
			return "", err
		}
		b.WriteString(content)
		b.WriteString("\n")
	}
	return b.String(), nil
}

// GetAllTopics returns every topic but the readme, in the readme's order.
// Topics the readme does not list come last, sorted by name.
func GetAllTopics() ([]string, error) {
	index, err := indexed()
	if err != nil {
		return nil, err
	}
	entries, err := fs.ReadDir(files, ".")
	if err != nil {
		return nil, err
	}
	var unlisted []string
	for _, e := range entries {
		name := strings.TrimSuffix(e.Name(), path.Ext(e.Name()))
		if e.IsDir() || name == Readme || slices.Contains(index, name) {
			continue
		}
		unlisted = append(unlisted, name)
	}
	sort.Strings(unlisted)

	topics := make([]string, 0, len(index)+len(unlisted))
	for _, name := range index {
		if _, err := fs.Stat(files, name+".md"); err == nil {
			topics = append(topics, name)
		}
	}
	return append(topics, unlisted...), nil
}

// indexed returns the topics listed in the readme.
func indexed() ([]string, error) {
	content, err := files.ReadFile(Readme + ".md")
	if err != nil {
		return nil, err
	}
	var topics []string
	scanner := bufio.NewScanner(bytes.NewReader(content))
	for scanner.Scan() {
		if m := indexEntry.FindStringSubmatch(scanner.Text()); m != nil {
			topics = append(topics, m[1])
		}
	}
	return topics, scanner.Err()
}
