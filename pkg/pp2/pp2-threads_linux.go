// Copyright (c) 2023 Seagate Technology LLC and/or its Affiliates

//go:build linux

package pp2

import (
	"golang.org/x/sys/unix"
	"k8s.io/klog/v2"
)

func (OnlineCPUs) NumThreads() (int, error) {
	var set unix.CPUSet
	if err := unix.SchedGetaffinity(0, &set); err != nil {
		return 0, err
	}
	n := set.Count()
	klog.V(DBG_LVL_INFO).InfoS("pp2.OnlineCPUs", "count", n)
	return n, nil
}
