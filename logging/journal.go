package logging

import (
	"context"
	"sync/atomic"

	"github.com/go-logr/logr"
	"github.com/viant/kaiten/service/messaging/memory"
)

// Entry is a single journal record.
type Entry struct {
	Level         int
	Name          string
	Message       string
	Err           error
	KeysAndValues []interface{}
}

// Journal is a bounded asynchronous log channel. Writers never block: when
// the buffer is full the entry is dropped and counted.
type Journal struct {
	queue   *memory.Queue[Entry]
	logger  logr.Logger
	dropped atomic.Int64
	written atomic.Int64
}

// NewJournal creates a journal draining into logger.
func NewJournal(logger logr.Logger, size int) *Journal {
	return &Journal{
		queue:  memory.NewQueue[Entry](memory.Config{QueueBuffer: size}),
		logger: logger,
	}
}

// Log appends a plain line at the default level.
func (j *Journal) Log(line string) {
	j.Write(Entry{Message: line})
}

// Write appends an entry; it reports false when the entry was dropped.
func (j *Journal) Write(entry Entry) bool {
	if err := j.queue.TryPublish(&entry); err != nil {
		j.dropped.Add(1)
		return false
	}
	return true
}

// Dropped returns the number of entries lost to a full buffer.
func (j *Journal) Dropped() int64 { return j.dropped.Load() }

// Written returns the number of entries emitted to the backing logger.
func (j *Journal) Written() int64 { return j.written.Load() }

// Pending returns the number of buffered entries.
func (j *Journal) Pending() int { return j.queue.Size() }

// Run drains the journal until ctx is done, then flushes what is buffered.
func (j *Journal) Run(ctx context.Context) {
	for {
		message, err := j.queue.Consume(ctx)
		if err != nil {
			j.Flush()
			return
		}
		j.emit(message.T())
		_ = message.Ack()
	}
}

// Flush writes every buffered entry without waiting for new ones.
func (j *Journal) Flush() {
	for {
		message, ok := j.queue.TryConsume()
		if !ok {
			return
		}
		j.emit(message.T())
		_ = message.Ack()
	}
}

func (j *Journal) emit(entry *Entry) {
	logger := j.logger
	if entry.Name != "" {
		logger = logger.WithName(entry.Name)
	}
	if entry.Err != nil {
		logger.Error(entry.Err, entry.Message, entry.KeysAndValues...)
	} else {
		logger.V(entry.Level).Info(entry.Message, entry.KeysAndValues...)
	}
	j.written.Add(1)
}

// Logger returns a logr.Logger that writes through the journal.
func (j *Journal) Logger() logr.Logger {
	return logr.New(&sink{journal: j})
}

type sink struct {
	journal *Journal
	name    string
	values  []interface{}
}

func (s *sink) Init(logr.RuntimeInfo) {}

func (s *sink) Enabled(level int) bool {
	return s.journal.logger.V(level).Enabled()
}

func (s *sink) Info(level int, msg string, keysAndValues ...interface{}) {
	s.journal.Write(Entry{Level: level, Name: s.name, Message: msg, KeysAndValues: s.merge(keysAndValues)})
}

func (s *sink) Error(err error, msg string, keysAndValues ...interface{}) {
	if err == nil {
		err = errUnspecified
	}
	s.journal.Write(Entry{Name: s.name, Message: msg, Err: err, KeysAndValues: s.merge(keysAndValues)})
}

func (s *sink) WithValues(keysAndValues ...interface{}) logr.LogSink {
	return &sink{journal: s.journal, name: s.name, values: s.merge(keysAndValues)}
}

func (s *sink) WithName(name string) logr.LogSink {
	if s.name != "" {
		name = s.name + "." + name
	}
	return &sink{journal: s.journal, name: name, values: s.values}
}

func (s *sink) merge(keysAndValues []interface{}) []interface{} {
	if len(s.values) == 0 {
		return keysAndValues
	}
	ret := make([]interface{}, 0, len(s.values)+len(keysAndValues))
	ret = append(ret, s.values...)
	return append(ret, keysAndValues...)
}
