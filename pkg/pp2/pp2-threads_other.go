// Copyright (c) 2023 Seagate Technology LLC and/or its Affiliates

//go:build !linux

package pp2

import "runtime"

func (OnlineCPUs) NumThreads() (int, error) {
	return runtime.NumCPU(), nil
}
