/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package debate

import (
	"bufio"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"os"
	"strings"
)

const noTopic = "Discussion Topic Not Set!"

//go:embed topics.txt
var defaultTopics string

// TopicSource supplies the question debated in a round.
type TopicSource interface {
	RandomTopic(rng *rand.Rand) string
}

// TopicList is a TopicSource backed by a fixed list of questions.
type TopicList []string

func (t TopicList) RandomTopic(rng *rand.Rand) string {
	if len(t) == 0 {
		return noTopic
	}

	return t[rng.Intn(len(t))]
}

// DefaultTopics returns the questions bundled with the binary.
func DefaultTopics() TopicList {
	topics, err := ParseTopics(strings.NewReader(defaultTopics))
	if err != nil {
		return TopicList{noTopic}
	}

	return topics
}

// ParseTopics reads one question per line. Blank lines and lines starting
// with # are skipped.
func ParseTopics(r io.Reader) (TopicList, error) {
	var topics TopicList

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		topics = append(topics, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	if len(topics) == 0 {
		return nil, errors.New("no topics found")
	}

	return topics, nil
}

func LoadTopics(path string) (TopicList, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	topics, err := ParseTopics(f)
	if err != nil {
		return nil, fmt.Errorf("reading topics from %s: %w", path, err)
	}

	return topics, nil
}
