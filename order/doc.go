// Package order decides the sequence in which hooks, lifecycle components and
// other registered extensions run.
//
// Objects implementing PriorityOrdered always come before objects implementing
// only Ordered, which always come before objects with no order at all. Within
// a tier lower values run first, and ties keep registration order.
package order
