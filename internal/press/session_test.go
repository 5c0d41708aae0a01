package press_test

import (
	"errors"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/san-kum/presssim/internal/material"
	"github.com/san-kum/presssim/internal/press"
)

var _ = Describe("Session", func() {
	var (
		session *press.Session
		machine press.Machine
	)

	BeforeEach(func() {
		machine = press.DefaultMachine()
		session = press.NewSession(machine)
	})

	It("Can be instantiated correctly", func() {
		Expect(session.Status()).To(Equal(press.Idle))
		Expect(session.CrossheadY()).To(Equal(machine.CrossheadHome))
		_, ok := session.Material()
		Expect(ok).To(BeFalse())
		_, done := session.Completion()
		Expect(done).To(BeFalse())
	})

	Context("Lifecycle", func() {
		It("Will refuse to start without a material", func() {
			err := session.Start(material.Material{}, press.Compression)
			Expect(errors.Is(err, press.ErrNoMaterial)).To(BeTrue())
			Expect(session.Status()).To(Equal(press.Idle))
		})

		It("Will refuse an unknown test kind", func() {
			err := session.Start(brick(), press.Kind(7))
			Expect(errors.Is(err, press.ErrUnknownKind)).To(BeTrue())
		})

		It("Will refuse a second start while running or paused", func() {
			Expect(session.Start(brick(), press.Compression)).To(Succeed())

			err := session.Start(brick(), press.Tensile)
			Expect(errors.Is(err, press.ErrAlreadyRunning)).To(BeTrue())

			var stateErr *press.StateError
			Expect(errors.As(err, &stateErr)).To(BeTrue())
			Expect(stateErr.Status).To(Equal(press.Running))

			Expect(session.Pause()).To(Succeed())
			err = session.Start(brick(), press.Tensile)
			Expect(errors.Is(err, press.ErrAlreadyRunning)).To(BeTrue())
			Expect(session.Kind()).To(Equal(press.Compression))
		})

		It("Will only pause a running test and only resume a paused one", func() {
			Expect(errors.Is(session.Pause(), press.ErrNotRunning)).To(BeTrue())
			Expect(errors.Is(session.Resume(), press.ErrNotPaused)).To(BeTrue())

			Expect(session.Start(brick(), press.Compression)).To(Succeed())
			Expect(errors.Is(session.Resume(), press.ErrNotRunning)).To(BeTrue())

			Expect(session.Pause()).To(Succeed())
			Expect(session.Status()).To(Equal(press.Paused))
			Expect(errors.Is(session.Pause(), press.ErrNotRunning)).To(BeTrue())

			Expect(session.Resume()).To(Succeed())
			Expect(session.Status()).To(Equal(press.Running))
		})

		It("Will refuse to start again once finished until reset", func() {
			Expect(session.Start(brick(), press.Compression)).To(Succeed())
			runUntilDone(session)
			Expect(session.Status()).To(Equal(press.Finished))

			err := session.Start(brick(), press.Compression)
			Expect(errors.Is(err, press.ErrAlreadyRunning)).To(BeTrue())

			session.Reset()
			Expect(session.Start(brick(), press.Compression)).To(Succeed())
		})

		It("Will discard everything on reset", func() {
			Expect(session.Start(brick(), press.Tensile)).To(Succeed())
			for i := 0; i < 5; i++ {
				session.Step()
			}

			session.Reset()

			Expect(session.Status()).To(Equal(press.Idle))
			Expect(session.Deformation()).To(BeZero())
			Expect(session.Force()).To(BeZero())
			Expect(session.PeakForce()).To(BeZero())
			Expect(session.PeakStress()).To(BeZero())
			Expect(session.Steps()).To(BeZero())
			Expect(session.CrossheadY()).To(Equal(machine.CrossheadHome))
			_, ok := session.Material()
			Expect(ok).To(BeFalse())
		})
	})

	Context("Stepping guard", func() {
		It("Will not touch state when idle", func() {
			before := session.Snapshot()
			snap, out := session.Step()
			Expect(out).To(Equal(press.Skipped))
			Expect(snap).To(Equal(press.Snapshot{}))
			Expect(session.Snapshot()).To(Equal(before))
		})

		It("Will not touch state when paused", func() {
			Expect(session.Start(brick(), press.Compression)).To(Succeed())
			session.Step()
			session.Step()
			Expect(session.Pause()).To(Succeed())

			before := session.Snapshot()
			for i := 0; i < 10; i++ {
				_, out := session.Step()
				Expect(out).To(Equal(press.Skipped))
			}
			Expect(session.Snapshot()).To(Equal(before))
		})

		It("Will resume exactly where it paused", func() {
			Expect(session.Start(brick(), press.Compression)).To(Succeed())
			session.Step()
			Expect(session.Pause()).To(Succeed())
			Expect(session.Resume()).To(Succeed())

			snap, out := session.Step()
			Expect(out).To(Equal(press.Advanced))
			Expect(snap.Deformation).To(Equal(1.0))
			Expect(snap.Step).To(Equal(2))
		})

		It("Will not touch state once finished", func() {
			Expect(session.Start(brick(), press.Compression)).To(Succeed())
			runUntilDone(session)

			before := session.Snapshot()
			_, out := session.Step()
			Expect(out).To(Equal(press.Skipped))
			Expect(session.Snapshot()).To(Equal(before))
		})
	})

	Context("Compression", func() {
		BeforeEach(func() {
			Expect(session.Start(brick(), press.Compression)).To(Succeed())
		})

		It("Will compute the first step of a brick", func() {
			snap, out := session.Step()
			Expect(out).To(Equal(press.Advanced))

			Expect(snap.Kind).To(Equal(press.Compression))
			Expect(snap.Deformation).To(Equal(0.5))
			Expect(snap.Strain).To(BeNumerically("~", 0.0125, 1e-12))
			Expect(snap.Stress).To(BeNumerically("~", 29.5, 1e-9))
			Expect(snap.Force).To(BeNumerically("~", 94400, 1e-6))
			Expect(snap.PeakForce).To(Equal(snap.Force))
			Expect(snap.PeakStress).To(Equal(snap.Stress))
			Expect(snap.Height).To(Equal(39.5))

			f := math.Sqrt(40 / 39.5)
			Expect(snap.Width).To(BeNumerically("~", 80*f, 1e-9))
			Expect(snap.Depth).To(BeNumerically("~", 40*f, 1e-9))
			Expect(snap.CrossheadY).To(BeNumerically("~", 1200-(39.5*2+20*2), 1e-9))
		})

		It("Will advance by exactly one step size per call until the safety margin", func() {
			snaps, calls := runUntilDone(session)

			Expect(snaps).To(HaveLen(60))
			Expect(calls).To(Equal(61))
			for i, snap := range snaps {
				Expect(snap.Deformation).To(Equal(float64(i+1) * press.StepSize))
			}

			last := snaps[len(snaps)-1]
			Expect(last.Deformation).To(Equal(40 - press.SafetyMargin))
			Expect(last.Height).To(BeNumerically(">=", press.SafetyMargin))

			Expect(session.Status()).To(Equal(press.Finished))
			completion, ok := session.Completion()
			Expect(ok).To(BeTrue())
			Expect(completion.Message).To(Equal("The compression test has finished."))
			Expect(completion.Steps).To(Equal(60))
			Expect(completion.PeakForce).To(Equal(last.PeakForce))
		})

		It("Will keep peak force non-decreasing with peak stress taken at the same step", func() {
			snaps, _ := runUntilDone(session)

			peak := 0.0
			stressAtPeak := 0.0
			for _, snap := range snaps {
				Expect(snap.PeakForce).To(BeNumerically(">=", peak))
				if snap.Force > peak {
					peak = snap.Force
					stressAtPeak = snap.Stress
				}
				Expect(snap.PeakForce).To(Equal(peak))
				Expect(snap.PeakStress).To(Equal(stressAtPeak))
			}
		})
	})

	Context("Tensile", func() {
		BeforeEach(func() {
			Expect(session.Start(brick(), press.Tensile)).To(Succeed())
		})

		It("Will compute the first step on the necked cross-section", func() {
			snap, out := session.Step()
			Expect(out).To(Equal(press.Advanced))

			Expect(snap.Kind).To(Equal(press.Tensile))
			Expect(snap.Deformation).To(Equal(0.5))
			Expect(snap.Stress).To(BeNumerically("~", 29.5, 1e-9))
			Expect(snap.Height).To(Equal(40.5))

			f := math.Sqrt(40 / 40.5)
			Expect(snap.Width).To(BeNumerically("~", 80*f, 1e-9))
			Expect(snap.Depth).To(BeNumerically("~", 40*f, 1e-9))
			Expect(snap.Width).To(BeNumerically("~", 79.5, 0.01))
			Expect(snap.Depth).To(BeNumerically("~", 39.75, 0.01))
			Expect(snap.Force).To(BeNumerically("~", 29.5*3200*40/40.5, 1e-6))
			Expect(snap.CrossheadY).To(BeNumerically("~", 1200-(40.5*2+20*2), 1e-9))
		})

		It("Will break once the elongation reaches twice the height", func() {
			snaps, calls := runUntilDone(session)

			Expect(snaps).To(HaveLen(160))
			Expect(calls).To(Equal(161))
			Expect(snaps[len(snaps)-1].Deformation).To(Equal(40 * press.BreakFactor))

			completion, ok := session.Completion()
			Expect(ok).To(BeTrue())
			Expect(completion.Kind).To(Equal(press.Tensile))
			Expect(completion.Message).To(Equal("The tensile test has finished (material broke)."))
		})
	})

	Context("Yield", func() {
		It("Will stay linear below yield", func() {
			stiff, err := material.New("stiff", 1, 1000, 10, 100, 10)
			Expect(err).ToNot(HaveOccurred())
			Expect(session.Start(stiff, press.Compression)).To(Succeed())

			snap, _ := session.Step()
			Expect(snap.Stress).To(BeNumerically("~", 1000*0.005, 1e-12))
			Expect(snap.Force).To(BeNumerically("~", 5*100, 1e-9))
		})

		It("Will grow at a tenth of the elastic rate past yield", func() {
			Expect(session.Start(brick(), press.Compression)).To(Succeed())

			first, _ := session.Step()
			second, _ := session.Step()
			elastic := 20000 * (second.Strain - first.Strain)
			Expect(second.Stress - first.Stress).To(BeNumerically("~", press.PostYieldRatio*elastic, 1e-9))
		})
	})

	Context("Repeatability", func() {
		It("Will reproduce the first step after reset", func() {
			Expect(session.Start(brick(), press.Tensile)).To(Succeed())
			first, _ := session.Step()
			session.Step()

			session.Reset()
			Expect(session.Start(brick(), press.Tensile)).To(Succeed())
			again, _ := session.Step()

			fresh := press.NewSession(machine)
			Expect(fresh.Start(brick(), press.Tensile)).To(Succeed())
			other, _ := fresh.Step()

			Expect(again).To(Equal(first))
			Expect(other).To(Equal(first))
		})
	})

	Context("Calibration", func() {
		It("Will park the crosshead on the specimen", func() {
			y, err := session.Calibrate(brick(), press.Compression)
			Expect(err).ToNot(HaveOccurred())
			Expect(y).To(Equal(1200.0 - 40*2 - 20*2))
			Expect(session.CrossheadY()).To(Equal(y))

			y, err = session.Calibrate(brick(), press.Tensile)
			Expect(err).ToNot(HaveOccurred())
			Expect(y).To(Equal(1200.0 - 40*2))
		})

		It("Will refuse to calibrate during a test", func() {
			Expect(session.Start(brick(), press.Compression)).To(Succeed())
			_, err := session.Calibrate(brick(), press.Compression)
			Expect(errors.Is(err, press.ErrAlreadyRunning)).To(BeTrue())
		})
	})

	Context("Observers", func() {
		It("Will hear every transition and step", func() {
			obs := &recordingObserver{}
			session.AddObserver(obs)

			Expect(session.Start(brick(), press.Compression)).To(Succeed())
			session.Step()
			Expect(session.Pause()).To(Succeed())
			Expect(session.Resume()).To(Succeed())
			runUntilDone(session)

			Expect(obs.statuses).To(Equal([]press.Status{press.Running, press.Paused, press.Running, press.Finished}))
			Expect(obs.messages[1]).To(Equal("Test paused. Press Resume Test to continue."))
			Expect(obs.messages[2]).To(Equal("Test resumed."))
			Expect(obs.steps).To(Equal(60))
		})
	})
})
