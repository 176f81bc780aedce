//go:build production

package confidence

const assertionsEnabled = false
