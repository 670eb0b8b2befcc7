//go:build !darwin

package notify

func newPlatform() Notifier {
	return Console{}
}
