package worker_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	queue "github.com/okian/fanhop/internal/adapters/mq/queue"
	worker "github.com/okian/fanhop/internal/adapters/mq/worker"
	model "github.com/okian/fanhop/internal/domain/model"
	logging "github.com/okian/fanhop/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

type mockQueue struct {
	jobs chan worker.Job
}

func newMockQueue() *mockQueue {
	return &mockQueue{jobs: make(chan worker.Job, 10)}
}

func (mq *mockQueue) Dequeue(ctx context.Context) <-chan worker.Job { return mq.jobs }

type recordingHandler struct {
	mu   sync.Mutex
	seen []string
	fail map[string]error
	done chan struct{}
}

func newRecordingHandler(expect int) *recordingHandler {
	return &recordingHandler{fail: map[string]error{}, done: make(chan struct{}, expect)}
}

func (h *recordingHandler) Handle(ctx context.Context, j worker.Job) error {
	h.mu.Lock()
	h.seen = append(h.seen, j.ModelID)
	err := h.fail[j.ModelID]
	h.mu.Unlock()
	h.done <- struct{}{}
	if j.ModelID == "boom" {
		panic("boom")
	}
	return err
}

func (h *recordingHandler) wait(n int) bool {
	for i := 0; i < n; i++ {
		select {
		case <-h.done:
		case <-time.After(2 * time.Second):
			return false
		}
	}
	return true
}

func (h *recordingHandler) ids() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.seen...)
}

func TestWorker(t *testing.T) {
	if err := logging.Init(); err != nil {
		t.Fatal(err)
	}

	convey.Convey("Given a worker over a mock queue", t, func() {
		ctx := context.Background()
		q := newMockQueue()
		h := newRecordingHandler(10)
		w := worker.NewInMemoryWorker(q, h, worker.WithName("test-worker"))
		go w.Run(ctx)

		convey.Convey("When jobs arrive", func() {
			q.jobs <- model.Job{ModelID: "m1", Kind: model.JobGrade}
			q.jobs <- model.Job{ModelID: "m2", Kind: model.JobRemove}

			convey.Convey("Then the handler sees them in order", func() {
				convey.So(h.wait(2), convey.ShouldBeTrue)
				convey.So(h.ids(), convey.ShouldResemble, []string{"m1", "m2"})
				convey.So(w.Shutdown(ctx), convey.ShouldBeNil)
			})
		})

		convey.Convey("When the handler fails or panics", func() {
			h.fail["bad"] = errors.New("store down")
			q.jobs <- model.Job{ModelID: "bad", Kind: model.JobGrade}
			q.jobs <- model.Job{ModelID: "boom", Kind: model.JobGrade}
			q.jobs <- model.Job{ModelID: "ok", Kind: model.JobGrade}

			convey.Convey("Then the worker keeps going", func() {
				convey.So(h.wait(3), convey.ShouldBeTrue)
				convey.So(h.ids(), convey.ShouldResemble, []string{"bad", "boom", "ok"})
				convey.So(w.Shutdown(ctx), convey.ShouldBeNil)
			})
		})

		convey.Convey("When the queue closes", func() {
			close(q.jobs)

			convey.Convey("Then Run returns on its own", func() {
				stopped := false
				select {
				case <-w.Done():
					stopped = true
				case <-time.After(2 * time.Second):
				}
				convey.So(stopped, convey.ShouldBeTrue)
				convey.So(w.Shutdown(ctx), convey.ShouldBeNil)
			})
		})
	})
}

func TestPool(t *testing.T) {
	if err := logging.Init(); err != nil {
		t.Fatal(err)
	}

	convey.Convey("Given a pool over a real queue", t, func() {
		ctx := context.Background()
		q := queue.NewInMemoryQueue(queue.WithCapacity(100))

		var (
			mu    sync.Mutex
			count = map[string]int{}
		)
		h := worker.HandlerFunc(func(ctx context.Context, j worker.Job) error {
			mu.Lock()
			count[j.ModelID]++
			mu.Unlock()
			return nil
		})
		p := worker.NewPool(4, q, h)
		convey.So(p.Size(), convey.ShouldEqual, 4)
		p.Start(ctx)

		for i := 0; i < 50; i++ {
			convey.So(q.Enqueue(ctx, model.Job{ModelID: fmt.Sprintf("m%d", i), Kind: model.JobGrade}), convey.ShouldBeNil)
		}

		convey.Convey("When the pool shuts down", func() {
			convey.So(p.Shutdown(ctx), convey.ShouldBeNil)

			convey.Convey("Then every queued job was handled exactly once", func() {
				mu.Lock()
				defer mu.Unlock()
				convey.So(len(count), convey.ShouldEqual, 50)
				for _, n := range count {
					convey.So(n, convey.ShouldEqual, 1)
				}
			})
		})
	})
}
