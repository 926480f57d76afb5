// Package logging provides leveled component loggers with step
// timing, printed through a single broker goroutine.
package logging

import (
	"fmt"
	"os"
	"sync"
	"time"
)

type Level int

const (
	FATAL Level = iota
	ERROR
	WARNING
	INFO
	DEBUG
)

type Record struct {
	Level     Level
	Component string
	Message   string
}

type Logger struct {
	Component string
}

func NewLogger(component string) *Logger {
	return &Logger{component}
}

func (l *Logger) Print(args ...interface{}) {
	defaultBroker.records <- Record{INFO, l.Component, fmt.Sprint(args...)}
}

func (l *Logger) Printf(msg string, args ...interface{}) {
	defaultBroker.records <- Record{INFO, l.Component, fmt.Sprintf(msg, args...)}
}

func (l *Logger) Warnf(msg string, args ...interface{}) {
	defaultBroker.records <- Record{WARNING, l.Component, fmt.Sprintf(msg, args...)}
}

func (l *Logger) Errorf(msg string, args ...interface{}) {
	defaultBroker.records <- Record{ERROR, l.Component, fmt.Sprintf(msg, args...)}
}

func (l *Logger) Fatal(args ...interface{}) {
	defaultBroker.records <- Record{FATAL, l.Component, fmt.Sprint(args...)}
	Shutdown()
	os.Exit(1)
}

func (l *Logger) Fatalf(msg string, args ...interface{}) {
	l.Fatal(fmt.Sprintf(msg, args...))
}

// StartStep logs the beginning of a named step and returns the name
// for StopStep.
func (l *Logger) StartStep(name string) string {
	defaultBroker.stepStart <- step{l.Component, name}
	return name
}

func (l *Logger) StopStep(name string) {
	defaultBroker.stepStop <- step{l.Component, name}
}

func SetQuiet(quiet bool) {
	defaultBroker.quiet = quiet
}

type step struct {
	component string
	name      string
}

type broker struct {
	records   chan Record
	stepStart chan step
	stepStop  chan step
	quit      chan bool
	quiet     bool
	wg        *sync.WaitGroup
}

func (b *broker) loop() {
	b.wg.Add(1)
	steps := make(map[step]time.Time)
For:
	for {
		select {
		case record := <-b.records:
			b.print(record)
		case s := <-b.stepStart:
			steps[s] = time.Now()
			b.print(Record{INFO, s.component, s.name})
		case s := <-b.stepStop:
			start := steps[s]
			delete(steps, s)
			b.print(Record{INFO, s.component, s.name + " took: " + time.Since(start).String()})
		case <-b.quit:
			break For
		}
	}
Flush:
	for {
		select {
		case record := <-b.records:
			b.print(record)
		default:
			break Flush
		}
	}
	b.wg.Done()
}

func (b *broker) print(record Record) {
	if b.quiet && record.Level >= INFO {
		return
	}
	fmt.Print("[", time.Now().Format(time.Stamp), "] ")
	if record.Component != "" {
		fmt.Print("[", record.Component, "] ")
	}
	fmt.Println(record.Message)
}

// Shutdown flushes and stops the broker. Call once before exit.
func Shutdown() {
	select {
	case defaultBroker.quit <- true:
		defaultBroker.wg.Wait()
	default:
	}
}

var defaultBroker broker

func init() {
	defaultBroker = broker{
		records:   make(chan Record, 8),
		stepStart: make(chan step),
		stepStop:  make(chan step),
		quit:      make(chan bool, 1),
		wg:        &sync.WaitGroup{},
	}
	go defaultBroker.loop()
}
