package protocol

type Vector2 struct {
	X, Y float32
}

type Rectangle struct {
	X, Y, Width, Height float32
}

// Missile is a projectile fired by a client, including the animation state
// other clients need to draw it.
type Missile struct {
	Position      Vector2
	Rect          Rectangle
	CurrentFrame  uint32
	FramesSpeed   uint32
	FramesCounter uint32
}

func (m *Missile) encode(w *Writer) {
	w.WriteFloat32(m.Position.X)
	w.WriteFloat32(m.Position.Y)
	w.WriteFloat32(m.Rect.X)
	w.WriteFloat32(m.Rect.Y)
	w.WriteFloat32(m.Rect.Width)
	w.WriteFloat32(m.Rect.Height)
	w.WriteUint32(m.CurrentFrame)
	w.WriteUint32(m.FramesSpeed)
	w.WriteUint32(m.FramesCounter)
}

func (m *Missile) decode(r *Reader) {
	m.Position.X = r.ReadFloat32()
	m.Position.Y = r.ReadFloat32()
	m.Rect.X = r.ReadFloat32()
	m.Rect.Y = r.ReadFloat32()
	m.Rect.Width = r.ReadFloat32()
	m.Rect.Height = r.ReadFloat32()
	m.CurrentFrame = r.ReadUint32()
	m.FramesSpeed = r.ReadUint32()
	m.FramesCounter = r.ReadUint32()
}

type MobState struct {
	ID     uint32
	X, Y   float32
	Active bool
}

func (m *MobState) encode(w *Writer) {
	w.WriteUint32(m.ID)
	w.WriteFloat32(m.X)
	w.WriteFloat32(m.Y)
	w.WriteBool(m.Active)
}

func (m *MobState) decode(r *Reader) {
	m.ID = r.ReadUint32()
	m.X = r.ReadFloat32()
	m.Y = r.ReadFloat32()
	m.Active = r.ReadBool()
}

// missileList is the count-prefixed missile array shared by UpdateState and
// ClientState.
type missileList struct {
	MissileCount uint32
	Missiles     [MaxMissilesClient]Missile
}

// AddMissile appends m, reporting false once the list is full.
func (l *missileList) AddMissile(m Missile) bool {
	if l.MissileCount >= MaxMissilesClient {
		return false
	}
	l.Missiles[l.MissileCount] = m
	l.MissileCount++
	return true
}

// MissileList returns the populated prefix of Missiles.
func (l *missileList) MissileList() []Missile {
	return l.Missiles[:min(l.MissileCount, MaxMissilesClient)]
}

func (l *missileList) encode(w *Writer) {
	count := min(l.MissileCount, MaxMissilesClient)
	w.WriteUint32(count)
	for i := range count {
		l.Missiles[i].encode(w)
	}
}

func (l *missileList) decode(r *Reader) {
	l.MissileCount = r.ReadCount(MaxMissilesClient)
	for i := range l.MissileCount {
		l.Missiles[i].decode(r)
	}
}

// ClientState is one client's entry in a game-state snapshot.
type ClientState struct {
	ClientID uint32
	X, Y     int32
	missileList
}

func (s *ClientState) encode(w *Writer) {
	w.WriteUint32(s.ClientID)
	w.WriteInt32(s.X)
	w.WriteInt32(s.Y)
	s.missileList.encode(w)
}

func (s *ClientState) decode(r *Reader) {
	s.ClientID = r.ReadUint32()
	s.X = r.ReadInt32()
	s.Y = r.ReadInt32()
	s.missileList.decode(r)
}
