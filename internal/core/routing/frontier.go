package routing

// frontierItem is a node waiting to be expanded. cost is g(node); priority
// is g(node) + h(node).
type frontierItem struct {
	id       string
	cost     float64
	priority float64
}

// frontier is a min-heap on priority for container/heap.
type frontier []*frontierItem

func (f frontier) Len() int { return len(f) }

func (f frontier) Less(i, j int) bool {
	if f[i].priority == f[j].priority {
		return f[i].cost > f[j].cost
	}
	return f[i].priority < f[j].priority
}

func (f frontier) Swap(i, j int) { f[i], f[j] = f[j], f[i] }

func (f *frontier) Push(x interface{}) {
	*f = append(*f, x.(*frontierItem))
}

func (f *frontier) Pop() interface{} {
	old := *f
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*f = old[:n-1]
	return item
}
