package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Task is a struct containing the information needed to process an image.
// It is used both to parse the effects file and as a task queue element to be processed by workers.
// @InPath: path to the input image
// @OutPath: path to the output image
// @MaskPath: optional path to a mask image restricting the effects
// @Effects: list of filter names to be applied to the image, in order
type Task struct {
	InPath   string   `json:"inPath"`
	OutPath  string   `json:"outPath"`
	MaskPath string   `json:"maskPath,omitempty"`
	Effects  []string `json:"effects"`
}

// TaskQueue is a list of tasks with a lock to synchronize access to them.
//
// Obs: the queue can also be accessed in non-thread safe mode by referring to the
// Tasks field directly. This way the sequential scheduler uses the same data
// structure as the parallel ones, without the sync overhead.
type TaskQueue struct {
	sync.Mutex
	Tasks []Task
}

// NewTaskQueue creates an empty TaskQueue.
func NewTaskQueue() *TaskQueue {
	return &TaskQueue{Tasks: make([]Task, 0)}
}

// Enqueue adds a new task to the queue in thread safe manner.
func (tq *TaskQueue) Enqueue(task Task) {
	tq.Lock()
	defer tq.Unlock()
	tq.Tasks = append(tq.Tasks, task)
}

// Dequeue removes the first Task of the queue in thread safe manner and returns
// a pointer to it, or nil if the queue is empty.
func (tq *TaskQueue) Dequeue() *Task {
	tq.Lock()
	defer tq.Unlock()
	if len(tq.Tasks) == 0 {
		return nil
	}
	task := tq.Tasks[0]
	tq.Tasks = tq.Tasks[1:]
	return &task
}

// Len returns the number of queued tasks.
func (tq *TaskQueue) Len() int {
	tq.Lock()
	defer tq.Unlock()
	return len(tq.Tasks)
}

// ReadTasks decodes a stream of JSON Task objects from 'r'.
func ReadTasks(r io.Reader) ([]Task, error) {
	decoder := json.NewDecoder(r)

	var tasks []Task
	for {
		var task Task
		// obs: the Task struct defines the fields to be parsed from the stream
		if err := decoder.Decode(&task); err != nil {
			if errors.Is(err, io.EOF) {
				return tasks, nil
			}
			return nil, fmt.Errorf("error decoding task %d: %w", len(tasks)+1, err)
		}
		tasks = append(tasks, task)
	}
}

// CreateTasks combines the entries of the effects file with the data directories
// to create a queue of tasks.
// @effectsPath: file holding a stream of JSON Task objects with paths relative to a data directory
// @inDir, @outDir: roots for input images and output images
// @dataDirs: '+' separated data directory names, e.g. "small+big"
//
// For entry {inPath: "a.png", outPath: "a_out.png"} and data directory "small", the task reads
// inDir/small/a.png and writes outDir/small_a_out.png.
func CreateTasks(effectsPath, inDir, outDir, dataDirs string) (*TaskQueue, error) {
	effectsFile, err := os.Open(effectsPath)
	if err != nil {
		return nil, fmt.Errorf("error opening effects file [%v]: %w", effectsPath, err)
	}
	defer effectsFile.Close()

	entries, err := ReadTasks(effectsFile)
	if err != nil {
		return nil, fmt.Errorf("error in effects file [%v]: %w", effectsPath, err)
	}

	// e.g. "s+b" -> ["s", "b"]
	dirs := strings.Split(dataDirs, "+")

	tqueue := NewTaskQueue()
	for _, entry := range entries {
		// one task per data directory
		for _, dir := range dirs {
			newTask := Task{
				InPath:  filepath.Join(inDir, dir, entry.InPath),
				OutPath: filepath.Join(outDir, dir+"_"+entry.OutPath),
				Effects: entry.Effects,
			}
			if entry.MaskPath != "" {
				newTask.MaskPath = filepath.Join(inDir, dir, entry.MaskPath)
			}
			tqueue.Tasks = append(tqueue.Tasks, newTask)
		}
	}
	return tqueue, nil
}
