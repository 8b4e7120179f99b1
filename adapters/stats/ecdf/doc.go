// Package ecdf implements empirical cumulative distribution functions and
// the two-sample distance between them.
//
// Two comparators compute the same statistic D = sup_x |Fn(x) − Gm(x)|:
//
//   - Reference evaluates both ECDFs at every distinct sample value by
//     counting, straight from the definition. O((n+m)²). It exists to check
//     the production path.
//   - Efficient sorts copies of both samples, collapses each into runs of
//     equal values and merges the runs in one forward pass.
//     O((n+m) log(n+m)).
//
// Both express the step height at a point as the integer |i·m − j·n| and
// divide by n·m once at the end, so their results agree bit for bit.
//
// Ecdf and the one-shot Value, Percentile, Permille and Rank functions answer
// point queries on a single sample using the nearest-rank method.
package ecdf
