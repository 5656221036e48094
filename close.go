package gdx

// Close finalizes a write, or simply releases a read, session. On
// write, any still-open symbol session is ended first, then the
// trailers (symbol table, set-text, UEL, acronym, domain-string lists)
// are written and the header's six offsets are patched in at their
// fixed position.
func (f *File) Close() error {
	if f.mode == ModeNotOpen {
		return nil
	}
	if f.session != nil {
		if err := f.endSession(); err != nil {
			return err
		}
	}
	if isWriteMode(f.mode) || f.mode == ModeWriteInit {
		if err := f.writeTrailers(); err != nil {
			return err
		}
	}
	if err := f.stream.Flush(); err != nil {
		return err
	}
	f.mode = ModeNotOpen
	return nil
}

func isWriteMode(m Mode) bool {
	switch m {
	case ModeWriteInit, ModeWriteDomainRaw, ModeWriteDomainMap, ModeWriteDomainStr,
		ModeWriteRaw, ModeWriteMap, ModeWriteStr,
		ModeRegisterRaw, ModeRegisterMap, ModeRegisterStr:
		return true
	}
	return false
}

func (f *File) writeTrailers() error {
	s := f.stream

	symbolOffset, err := f.flushPos()
	if err != nil {
		return err
	}
	if err := s.WriteString(markSymb); err != nil {
		return err
	}
	if err := f.writeSymbolTable(); err != nil {
		return err
	}
	if err := s.WriteString(markSymb); err != nil {
		return err
	}

	setTextOffset, err := f.flushPos()
	if err != nil {
		return err
	}
	if err := s.WriteString(markSett); err != nil {
		return err
	}
	if err := f.writeSetTextTable(); err != nil {
		return err
	}
	if err := s.WriteString(markSett); err != nil {
		return err
	}

	uelOffset, err := f.flushPos()
	if err != nil {
		return err
	}
	if err := s.WriteString(markUEL); err != nil {
		return err
	}
	if err := f.writeUELTable(); err != nil {
		return err
	}
	if err := s.WriteString(markUEL); err != nil {
		return err
	}

	acronymOffset, err := f.flushPos()
	if err != nil {
		return err
	}
	if err := s.WriteString(markAcro); err != nil {
		return err
	}
	if err := f.writeAcronymTable(); err != nil {
		return err
	}
	if err := s.WriteString(markAcro); err != nil {
		return err
	}

	domainStringOffset, err := f.flushPos()
	if err != nil {
		return err
	}
	if err := s.WriteString(markDoms); err != nil {
		return err
	}
	if err := f.writeDomainStrings(); err != nil {
		return err
	}
	if err := s.WriteString(markDoms); err != nil {
		return err
	}

	nextWriteOffset, err := f.flushPos()
	if err != nil {
		return err
	}

	f.offsets = offsetTable{
		symbol:       symbolOffset,
		uel:          uelOffset,
		setText:      setTextOffset,
		acronym:      acronymOffset,
		nextWrite:    nextWriteOffset,
		domainString: domainStringOffset,
	}
	return f.patchOffsets()
}

func (f *File) flushPos() (int64, error) {
	if err := f.stream.Flush(); err != nil {
		return 0, err
	}
	return f.stream.Pos()
}

// patchOffsets seeks back to the fixed position reserved for the six
// trailer offsets (right after the BOI marker) and writes their final
// values, then seeks back to the end of the stream.
func (f *File) patchOffsets() error {
	s := f.stream
	end, err := f.flushPos()
	if err != nil {
		return err
	}
	if _, err := s.Seek(f.headerOffsetsPos, 0); err != nil {
		return err
	}
	for _, v := range []int64{
		f.offsets.symbol, f.offsets.uel, f.offsets.setText,
		f.offsets.acronym, f.offsets.nextWrite, f.offsets.domainString,
	} {
		if err := s.RawWriteInt64(v); err != nil {
			return err
		}
	}
	_, err = s.Seek(end, 0)
	return err
}

func (f *File) writeSymbolTable() error {
	s := f.stream
	n := f.symbols.Count()
	if err := s.WriteInt(int32(n)); err != nil {
		return err
	}
	for i := 1; i <= n; i++ {
		d := f.symbols.Get(i)
		if err := s.WriteString(d.Name); err != nil {
			return err
		}
		if err := s.WriteInt64(d.Position); err != nil {
			return err
		}
		if err := s.WriteByte(byte(d.Dim)); err != nil {
			return err
		}
		if err := s.WriteByte(byte(d.Kind)); err != nil {
			return err
		}
		if err := s.WriteInt(int32(d.UserInfo)); err != nil {
			return err
		}
		if err := s.WriteInt(int32(d.RecordCount)); err != nil {
			return err
		}
		if err := s.WriteInt(0); err != nil { // error count: symbol-level errors are not persisted across close
			return err
		}
		hasText := byte(0)
		if d.Text != "" {
			hasText = 1
		}
		if err := s.WriteByte(hasText); err != nil {
			return err
		}
		if hasText == 1 {
			if err := s.WriteString(d.Text); err != nil {
				return err
			}
		}
		if err := s.WriteByte(0); err != nil { // compressed-on-disk flag
			return err
		}
		domainPresent := byte(0)
		if len(d.Domain) > 0 {
			domainPresent = 1
		}
		if err := s.WriteByte(domainPresent); err != nil {
			return err
		}
		if domainPresent == 1 {
			for _, name := range d.Domain {
				ord := f.symbols.IndexOf(name)
				if err := s.WriteInt(int32(ord)); err != nil {
					return err
				}
			}
		}
		if err := s.WriteInt(0); err != nil { // comment count: comments are not yet exposed on Descriptor
			return err
		}
	}
	return nil
}

func (f *File) writeSetTextTable() error {
	s := f.stream
	n := f.setTexts.Count()
	if err := s.WriteInt(int32(n - 1)); err != nil {
		return err
	}
	for i := 1; i < n; i++ {
		if err := s.WriteString(f.setTexts.Get(i)); err != nil {
			return err
		}
	}
	return nil
}

func (f *File) writeUELTable() error {
	s := f.stream
	n := f.uels.Count()
	if err := s.WriteInt(int32(n)); err != nil {
		return err
	}
	for i := 1; i <= n; i++ {
		if err := s.WriteString(f.uels.Storage(i)); err != nil {
			return err
		}
	}
	return nil
}

func (f *File) writeAcronymTable() error {
	s := f.stream
	n := f.acronyms.Count()
	if err := s.WriteInt(int32(n)); err != nil {
		return err
	}
	for i := 1; i <= n; i++ {
		e := f.acronyms.Get(i)
		if err := s.WriteString(e.Name); err != nil {
			return err
		}
		if err := s.WriteString(e.Text); err != nil {
			return err
		}
		if err := s.WriteInt(int32(e.Index)); err != nil {
			return err
		}
		if err := s.WriteInt(int32(e.MappedIndex)); err != nil {
			return err
		}
		auto := byte(0)
		if e.AutoGenerated {
			auto = 1
		}
		if err := s.WriteByte(auto); err != nil {
			return err
		}
	}
	return nil
}

func (f *File) writeDomainStrings() error {
	s := f.stream
	for i := 1; i <= f.symbols.Count(); i++ {
		for _, name := range f.symbols.Get(i).Domain {
			f.domainStrings.Add(name)
		}
	}
	n := f.domainStrings.Count()
	if err := s.WriteInt(int32(n)); err != nil {
		return err
	}
	for i := 1; i <= n; i++ {
		if err := s.WriteString(f.domainStrings.Get(i)); err != nil {
			return err
		}
	}
	for i := 1; i <= f.symbols.Count(); i++ {
		d := f.symbols.Get(i)
		if len(d.Domain) == 0 {
			continue
		}
		hasRelaxed := false
		for _, name := range d.Domain {
			if f.symbols.IndexOf(name) == 0 {
				hasRelaxed = true
				break
			}
		}
		if !hasRelaxed {
			continue
		}
		if err := s.WriteInt(int32(i)); err != nil {
			return err
		}
		for _, name := range d.Domain {
			id := f.domainStrings.Add(name)
			if err := s.WriteInt(int32(id)); err != nil {
				return err
			}
		}
	}
	return s.WriteInt(-1)
}
