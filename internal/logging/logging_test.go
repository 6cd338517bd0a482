/*
 * Copyright 2025 SREDiag Authors
 * Copyright 2023 CloudWeGo Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/suite"
)

type LoggingTestSuite struct {
	suite.Suite
	saved int
}

func (s *LoggingTestSuite) SetupTest() {
	s.saved = Level()
}

func (s *LoggingTestSuite) TearDownTest() {
	SetLogLevel(s.saved)
}

func (s *LoggingTestSuite) TestLevelFiltering() {
	var out bytes.Buffer
	l := New("test", &out)

	SetLogLevel(LevelWarn)
	l.Debugf("hidden %d", 1)
	l.Infof("hidden too")
	s.Require().Zero(out.Len())

	l.Warnf("shown %s", "warn")
	l.Errorf("shown error")
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	s.Require().Len(lines, 2)

	var entry map[string]interface{}
	s.Require().NoError(json.Unmarshal([]byte(lines[0]), &entry))
	s.Equal("warn", entry["level"])
	s.Equal("shown warn", entry["message"])
	s.Equal("test", entry["logger"])
	s.Contains(entry["caller"], "logging_test.go:")
}

func (s *LoggingTestSuite) TestDebugLevelPrintsAbove() {
	var out bytes.Buffer
	l := New("", &out)

	SetLogLevel(LevelDebug)
	l.Tracef("trace message")
	l.Debugf("debug message")
	l.Infof("info message")
	l.Warnf("warn message")
	s.Equal(3, strings.Count(out.String(), "\n"))
}

func (s *LoggingTestSuite) TestNoPrintAndInvalidLevel() {
	var out bytes.Buffer
	l := New("", &out)

	SetLogLevel(LevelNoPrint)
	l.Errorf("never")
	s.Zero(out.Len())

	SetLogLevel(42)
	s.Equal(LevelNoPrint, Level())
}

func TestLoggingTestSuite(t *testing.T) {
	suite.Run(t, new(LoggingTestSuite))
}
