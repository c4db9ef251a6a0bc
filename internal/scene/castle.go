package scene

import (
	"math"
	"math/rand"
	"regexp"
	"time"

	"github.com/kidandcat/heartquest/internal/interaction"
	"github.com/kidandcat/heartquest/internal/sequence"
)

const (
	HeartID = "heart"

	heartDelay     = 2 * time.Second
	burstParticles = 50
	videoAt        = 800 * time.Millisecond
	textAt         = 1000 * time.Millisecond
	cutsceneEnd    = 10 * time.Second
	castleSpeed    = 10
)

var (
	castleStart   = interaction.Vec3{X: 0, Y: 2, Z: 30}
	heartPosition = interaction.Vec3{X: 0, Y: 5, Z: -10}
	castleBounds  = interaction.Bounds{
		Min: interaction.Vec3{X: -20, Y: 2, Z: -20},
		Max: interaction.Vec3{X: 20, Y: 2, Z: 35},
	}
)

var youTubeRe = regexp.MustCompile(`^.*(youtu\.be/|v/|u/\w/|embed/|watch\?v=|&v=)([^#&?]*).*`)

// YouTubeID extracts the video id from a YouTube link, or "" when url is
// not one.
func YouTubeID(url string) string {
	m := youTubeRe.FindStringSubmatch(url)
	if m == nil || len(m[2]) != 11 {
		return ""
	}
	return m[2]
}

// Particle is one fragment of the heart burst.
type Particle struct {
	Position interaction.Vec3
	Velocity interaction.Vec3
}

type CastleView struct {
	Camera         interaction.Camera
	HeartVisible   bool
	HeartAimed     bool
	Heart          interaction.Vec3
	HeartScale     float64
	HeartSpin      float64
	Particles      []Particle
	ShowVideo      bool
	VideoMuted     bool
	VideoURL       string
	VideoYouTubeID string
	MusicYouTubeID string
	ShowText       bool
	TextRise       float64
	ProposalText   string
}

// Castle is the palace interior where the question is asked.
type Castle struct {
	reg        *interaction.Registry
	layer      *interaction.FirstPerson
	music      *music
	rng        *rand.Rand
	onComplete func()

	proposalText string
	videoURL     string
	musicURL     string

	elapsed    time.Duration
	heartShown bool
	burst      bool
	scale      *sequence.Tween
	spin       *sequence.Tween
	rise       *sequence.Tween
	particles  []Particle
	showVideo  bool
	videoMuted bool
	showText   bool
	cutscene   *sequence.Runner
}

type castleConfig struct {
	ProposalText string
	MusicURL     string
	MusicStart   time.Duration
	VideoURL     string
	Seed         int64
	OnComplete   func()
}

func newCastle(cfg castleConfig, m *music) *Castle {
	c := &Castle{
		reg:          interaction.NewRegistry(),
		music:        m,
		rng:          rand.New(rand.NewSource(cfg.Seed)),
		onComplete:   cfg.OnComplete,
		proposalText: cfg.ProposalText,
		videoURL:     cfg.VideoURL,
		musicURL:     cfg.MusicURL,
		videoMuted:   true,
	}
	c.reg.Register(interaction.Landmark{
		ID:    HeartID,
		Kind:  interaction.KindHeart,
		Label: "Heart",
		Shape: interaction.Sphere{Center: heartPosition, Radius: 3.5},
	})
	c.reg.SetHidden(HeartID, true)
	c.layer = interaction.NewFirstPerson(interaction.FirstPersonConfig{
		Mover:    interaction.MoverConfig{Speed: castleSpeed, PlayerRadius: 0.5, Bounds: castleBounds},
		Start:    castleStart,
		StartYaw: interaction.YawTowards(castleStart, heartPosition),
		AimRange: 60,
		FOV:      60,
		Aspect:   16.0 / 9.0,
	}, c.reg)
	c.layer.OnActivate(func(l interaction.Landmark) {
		if l.Kind == interaction.KindHeart {
			c.Burst()
		}
	})
	if YouTubeID(cfg.MusicURL) == "" {
		m.play(cfg.MusicURL, cfg.MusicStart, true)
	}
	return c
}

func (c *Castle) Layer() *interaction.FirstPerson { return c.layer }

// Burst explodes the heart and runs the reveal cutscene. Only the first
// call has any effect.
func (c *Castle) Burst() {
	if c.burst || !c.heartShown {
		return
	}
	c.burst = true
	c.cutscene = sequence.New(
		sequence.Step{At: 0, Name: "burst", Do: c.explode},
		sequence.Step{At: videoAt, Name: "video", Do: func() {
			c.heartShown = false
			c.reg.SetHidden(HeartID, true)
			if c.videoURL != "" {
				c.showVideo = true
				c.videoMuted = true
			}
		}},
		sequence.Step{At: textAt, Name: "text", Do: func() {
			c.showText = true
			c.rise = sequence.NewTween(-5, 0, 2*time.Second, sequence.Power2Out)
		}},
		sequence.Step{At: cutsceneEnd, Name: "complete", Do: func() {
			if c.onComplete != nil {
				c.onComplete()
			}
		}},
	)
	c.cutscene.Start()
}

func (c *Castle) explode() {
	c.scale = sequence.NewTween(1, 8, 300*time.Millisecond, sequence.Power2Out)
	c.spin = sequence.NewTween(0, 4*math.Pi, time.Second, sequence.Power2Out)
	c.particles = make([]Particle, burstParticles)
	for i := range c.particles {
		angle := float64(i) / burstParticles * 2 * math.Pi
		elevation := (c.rng.Float64() - 0.5) * math.Pi
		speed := 5 + c.rng.Float64()*10
		c.particles[i] = Particle{
			Position: heartPosition,
			Velocity: interaction.Vec3{
				X: math.Cos(angle) * math.Cos(elevation) * speed,
				Y: math.Sin(elevation) * speed,
				Z: math.Sin(angle) * math.Cos(elevation) * speed,
			},
		}
	}
}

// Finished reports whether the cutscene has run to completion.
func (c *Castle) Finished() bool { return c.cutscene != nil && c.cutscene.Finished() }

// ToggleVideoAudio swaps the soundtrack between the video and the music.
func (c *Castle) ToggleVideoAudio() {
	c.videoMuted = !c.videoMuted
	if c.videoMuted {
		c.music.fade(1, 300*time.Millisecond)
	} else {
		c.music.fade(0, 300*time.Millisecond)
	}
}

func (c *Castle) CloseVideo() {
	c.showVideo = false
	c.videoMuted = true
	c.music.fade(1, 300*time.Millisecond)
}

func (c *Castle) tick(dt time.Duration, in interaction.Input) {
	c.elapsed += dt
	if !c.heartShown && !c.burst && c.elapsed >= heartDelay {
		c.heartShown = true
		c.reg.SetHidden(HeartID, false)
	}
	c.layer.Tick(dt, in)
	if c.cutscene != nil {
		c.cutscene.Advance(dt)
	}
	for _, t := range []*sequence.Tween{c.scale, c.spin, c.rise} {
		if t != nil {
			t.Advance(dt)
		}
	}
	if len(c.particles) > 0 {
		drag := math.Pow(0.95, dt.Seconds()*60)
		alive := c.particles[:0]
		for _, p := range c.particles {
			p.Position = p.Position.Add(p.Velocity.Scale(dt.Seconds()))
			p.Velocity = p.Velocity.Scale(drag)
			if p.Velocity.Len() > 0.1 {
				alive = append(alive, p)
			}
		}
		c.particles = alive
	}
}

func (c *Castle) view() CastleView {
	v := CastleView{
		Camera:         c.layer.Camera(),
		HeartVisible:   c.heartShown,
		HeartAimed:     c.layer.Aimed() == HeartID,
		Heart:          heartPosition,
		HeartScale:     1,
		Particles:      append([]Particle(nil), c.particles...),
		ShowVideo:      c.showVideo,
		VideoMuted:     c.videoMuted,
		VideoURL:       c.videoURL,
		VideoYouTubeID: YouTubeID(c.videoURL),
		MusicYouTubeID: YouTubeID(c.musicURL),
		ShowText:       c.showText,
		TextRise:       -5,
		ProposalText:   c.proposalText,
	}
	if c.scale != nil {
		v.HeartScale = c.scale.Value()
	}
	if c.spin != nil {
		v.HeartSpin = c.spin.Value()
	}
	if c.rise != nil {
		v.TextRise = c.rise.Value()
	}
	return v
}

// close cancels the cutscene so a late completion is ignored.
func (c *Castle) close() {
	if c.cutscene != nil {
		c.cutscene.Cancel()
	}
	c.layer.Disable()
	c.music.stop()
}
