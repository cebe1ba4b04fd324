package shutdown

import (
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
)

// GracefulStop blocks until a termination signal arrives, runs stop,
// then exits. A second signal while stop is still draining terminates
// immediately. SIGHUP is left alone, config reload rides the file
// watcher instead.
func GracefulStop(stop func()) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	s := <-sigs
	zap.L().Info("termination signal received", zap.String("signal", s.String()))

	go func() {
		<-sigs
		zap.L().Fatal("second signal, terminating without drain")
	}()

	stop()

	os.Exit(0)
}
