// Copyright (c) 2023 Seagate Technology LLC and/or its Affiliates

package pp2

// ThreadCounter : source of the number of execution contexts that will drive
// the controller, one register window each.
type ThreadCounter interface {
	NumThreads() (int, error)
}

// FixedThreads reports a constant thread count.
type FixedThreads int

func (f FixedThreads) NumThreads() (int, error) {
	return int(f), nil
}

// OnlineCPUs counts the processors the calling process may run on.
type OnlineCPUs struct{}
