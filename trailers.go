package gdx

import (
	"fmt"
	"io"

	"github.com/gdxio/gdx/internal/symboltab"
)

func (f *File) readTrailers() error {
	s := f.stream

	if _, err := s.Seek(f.offsets.symbol, io.SeekStart); err != nil {
		return f.fail(ErrFileError)
	}
	if err := f.expectMarker(markSymb, ErrOpenSymbolMarker1); err != nil {
		return err
	}
	if err := f.readSymbolTable(); err != nil {
		return err
	}
	if err := f.expectMarker(markSymb, ErrOpenSymbolMarker2); err != nil {
		return err
	}

	if _, err := s.Seek(f.offsets.setText, io.SeekStart); err != nil {
		return f.fail(ErrFileError)
	}
	if err := f.expectMarker(markSett, ErrOpenTextMarker1); err != nil {
		return err
	}
	if err := f.readSetTextTable(); err != nil {
		return err
	}
	if err := f.expectMarker(markSett, ErrOpenTextMarker2); err != nil {
		return err
	}

	if _, err := s.Seek(f.offsets.uel, io.SeekStart); err != nil {
		return f.fail(ErrFileError)
	}
	if err := f.expectMarker(markUEL, ErrOpenUELMarker1); err != nil {
		return err
	}
	if err := f.readUELTable(); err != nil {
		return err
	}
	if err := f.expectMarker(markUEL, ErrOpenUELMarker2); err != nil {
		return err
	}

	if _, err := s.Seek(f.offsets.acronym, io.SeekStart); err != nil {
		return f.fail(ErrFileError)
	}
	if err := f.expectMarker(markAcro, ErrOpenAcroMarker1); err != nil {
		return err
	}
	if err := f.readAcronymTable(); err != nil {
		return err
	}
	if err := f.expectMarker(markAcro, ErrOpenAcroMarker2); err != nil {
		return err
	}

	if _, err := s.Seek(f.offsets.domainString, io.SeekStart); err != nil {
		return f.fail(ErrFileError)
	}
	if err := f.expectMarker(markDoms, ErrOpenDomsMarker1); err != nil {
		return err
	}
	if err := f.readDomainStrings(); err != nil {
		return err
	}
	if err := f.expectMarker(markDoms, ErrOpenDomsMarker2); err != nil {
		return err
	}

	return nil
}

func (f *File) expectMarker(want string, code Code) error {
	got, err := f.stream.ReadString()
	if err != nil || got != want {
		return f.fail(code)
	}
	return nil
}

func (f *File) readSymbolTable() error {
	s := f.stream
	n, err := s.ReadInt()
	if err != nil {
		return f.fail(ErrOpenFileHeader)
	}
	for i := 0; i < int(n); i++ {
		var d symboltab.Descriptor
		name, err := s.ReadString()
		if err != nil {
			return f.fail(ErrFileError)
		}
		d.Name = name
		pos, err := s.ReadInt64()
		if err != nil {
			return f.fail(ErrFileError)
		}
		d.Position = pos
		dim, err := s.ReadByte()
		if err != nil {
			return f.fail(ErrFileError)
		}
		d.Dim = int(dim)
		kind, err := s.ReadByte()
		if err != nil {
			return f.fail(ErrFileError)
		}
		d.Kind = symboltab.Kind(kind)
		userInfo, err := s.ReadInt()
		if err != nil {
			return f.fail(ErrFileError)
		}
		d.UserInfo = int(userInfo)
		count, err := s.ReadInt()
		if err != nil {
			return f.fail(ErrFileError)
		}
		d.RecordCount = int(count)
		if _, err := s.ReadInt(); err != nil { // error count, not retained
			return f.fail(ErrFileError)
		}
		hasText, err := s.ReadByte()
		if err != nil {
			return f.fail(ErrFileError)
		}
		if hasText == 1 {
			text, err := s.ReadString()
			if err != nil {
				return f.fail(ErrFileError)
			}
			d.Text = text
		}
		if _, err := s.ReadByte(); err != nil { // compressed-on-disk flag
			return f.fail(ErrFileError)
		}
		domainPresent, err := s.ReadByte()
		if err != nil {
			return f.fail(ErrFileError)
		}
		if domainPresent == 1 {
			d.Domain = make([]string, d.Dim)
			for dd := 0; dd < d.Dim; dd++ {
				ord, err := s.ReadInt()
				if err != nil {
					return f.fail(ErrFileError)
				}
				if ord == 0 {
					d.Domain[dd] = "*"
				} else if int(ord) <= i {
					d.Domain[dd] = f.symbols.Get(int(ord)).Name
				}
			}
		}
		ncomments, err := s.ReadInt()
		if err != nil {
			return f.fail(ErrFileError)
		}
		for c := 0; c < int(ncomments); c++ {
			if _, err := s.ReadString(); err != nil {
				return f.fail(ErrFileError)
			}
		}
		if d.Kind == symboltab.KindAlias {
			if d.UserInfo == 0 {
				d.AliasOf = "*"
			} else if d.UserInfo <= i {
				d.AliasOf = f.symbols.Get(d.UserInfo).Name
			}
		}
		idx, err := f.symbols.Add(d)
		if err != nil {
			return fmt.Errorf("gdx: reading symbol table: %w", err)
		}
		_ = idx
	}
	return nil
}

func (f *File) readSetTextTable() error {
	s := f.stream
	n, err := s.ReadInt()
	if err != nil {
		return f.fail(ErrFileError)
	}
	for i := 0; i < int(n); i++ {
		text, err := s.ReadString()
		if err != nil {
			return f.fail(ErrFileError)
		}
		if _, err := f.setTexts.Add(text); err != nil {
			return fmt.Errorf("gdx: reading set-text table: %w", err)
		}
	}
	return nil
}

func (f *File) readUELTable() error {
	s := f.stream
	n, err := s.ReadInt()
	if err != nil {
		return f.fail(ErrFileError)
	}
	for i := 0; i < int(n); i++ {
		label, err := s.ReadString()
		if err != nil {
			return f.fail(ErrFileError)
		}
		if _, err := f.uels.RegisterRaw(label); err != nil {
			return fmt.Errorf("gdx: reading UEL table: %w", err)
		}
	}
	return nil
}

func (f *File) readAcronymTable() error {
	s := f.stream
	n, err := s.ReadInt()
	if err != nil {
		return f.fail(ErrFileError)
	}
	for i := 0; i < int(n); i++ {
		name, err := s.ReadString()
		if err != nil {
			return f.fail(ErrFileError)
		}
		text, err := s.ReadString()
		if err != nil {
			return f.fail(ErrFileError)
		}
		index, err := s.ReadInt()
		if err != nil {
			return f.fail(ErrFileError)
		}
		mapped, err := s.ReadInt()
		if err != nil {
			return f.fail(ErrFileError)
		}
		auto, err := s.ReadByte()
		if err != nil {
			return f.fail(ErrFileError)
		}
		if err := f.acronyms.Add(name, text, int(index)); err != nil {
			return fmt.Errorf("gdx: reading acronym table: %w", err)
		}
		e := f.acronyms.ByIndex(int(index))
		e.AutoGenerated = auto == 1
		if mapped != 0 {
			if err := f.acronyms.SetMapping(int(index), int(mapped)); err != nil {
				return fmt.Errorf("gdx: reading acronym table: %w", err)
			}
		}
	}
	return nil
}

func (f *File) readDomainStrings() error {
	s := f.stream
	n, err := s.ReadInt()
	if err != nil {
		return f.fail(ErrFileError)
	}
	for i := 0; i < int(n); i++ {
		str, err := s.ReadString()
		if err != nil {
			return f.fail(ErrFileError)
		}
		f.domainStrings.Add(str)
	}
	for {
		symIdx, err := s.ReadInt()
		if err != nil {
			return f.fail(ErrFileError)
		}
		if symIdx == -1 {
			break
		}
		d := f.symbols.Get(int(symIdx))
		for dd := 0; dd < d.Dim; dd++ {
			id, err := s.ReadInt()
			if err != nil {
				return f.fail(ErrFileError)
			}
			if d.Domain == nil {
				d.Domain = make([]string, d.Dim)
			}
			d.Domain[dd] = f.domainStrings.Get(int(id))
		}
	}
	return nil
}
