// Package modinfo implements the module-info bytecode patcher: rewriting
// the `requires <module> @<version>` entries of a compiled module-info
// class file for java.*/jdk.* platform modules to a target release,
// leaving every other module directive and all non-module content
// byte-identical. Grounded on the teacher's other binary-format code
// (crypto/sha1 + encoding/binary hashing in java/java.go) for the
// "stream-rewrite rather than fully re-model" idiom; there is no
// class-file parsing library anywhere in the pack (see DESIGN.md).
package modinfo

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"sort"
	"strings"
)

// Logger receives the informational line this package emits when it
// rewrites a module-info class, matching the teacher's task-scoped
// Info(msg string) logging shape (builder/buildlog.go's taskLog).
type Logger interface {
	Info(msg string)
}

const (
	tagUtf8              = 1
	tagInteger           = 3
	tagFloat             = 4
	tagLong              = 5
	tagDouble            = 6
	tagClass             = 7
	tagString            = 8
	tagFieldref          = 9
	tagMethodref         = 10
	tagInterfaceMethodref = 11
	tagNameAndType       = 12
	tagMethodHandle      = 15
	tagMethodType        = 16
	tagDynamic           = 17
	tagInvokeDynamic     = 18
	tagModule            = 19
	tagPackage           = 20
)

// cpEntry is one constant-pool slot. unused is true for the dead slot
// that follows a Long/Double entry (JVMS 4.4.5).
type cpEntry struct {
	tag    byte
	raw    []byte // tag-specific payload, not including the tag byte itself
	unused bool
}

// Patch rewrites class's Module attribute's requires-version entries
// for java.*/jdk.* modules to targetRelease. It returns (patched, true)
// if any directive was rewritten, or (nil, false) - the "no change"
// sentinel - if the class already targets targetRelease throughout (or
// has no such requires entries at all).
func Patch(class []byte, targetRelease string, log Logger) ([]byte, bool, error) {
	r := bytes.NewReader(class)

	header := make([]byte, 8) // magic(4) + minor(2) + major(2)
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, false, fmt.Errorf("reading class file header: %w", err)
	}
	if !bytes.Equal(header[:4], []byte{0xCA, 0xFE, 0xBA, 0xBE}) {
		return nil, false, fmt.Errorf("not a class file: bad magic")
	}

	cpCount, err := readU2(r)
	if err != nil {
		return nil, false, fmt.Errorf("reading constant pool count: %w", err)
	}
	entries := make([]cpEntry, cpCount) // index 0 unused
	for i := 1; i < int(cpCount); i++ {
		tag, err := readU1(r)
		if err != nil {
			return nil, false, fmt.Errorf("reading constant pool entry %d tag: %w", i, err)
		}
		var payload []byte
		switch tag {
		case tagUtf8:
			length, err := readU2(r)
			if err != nil {
				return nil, false, err
			}
			data := make([]byte, length)
			if _, err := io.ReadFull(r, data); err != nil {
				return nil, false, err
			}
			payload = append(u2bytes(length), data...)
		case tagInteger, tagFloat:
			payload, err = readN(r, 4)
		case tagLong, tagDouble:
			payload, err = readN(r, 8)
		case tagClass, tagString, tagMethodType, tagModule, tagPackage:
			payload, err = readN(r, 2)
		case tagFieldref, tagMethodref, tagInterfaceMethodref, tagNameAndType, tagDynamic, tagInvokeDynamic:
			payload, err = readN(r, 4)
		case tagMethodHandle:
			payload, err = readN(r, 3)
		default:
			return nil, false, fmt.Errorf("constant pool entry %d has unknown tag %d", i, tag)
		}
		if err != nil {
			return nil, false, fmt.Errorf("reading constant pool entry %d: %w", i, err)
		}
		entries[i] = cpEntry{tag: tag, raw: payload}
		if tag == tagLong || tag == tagDouble {
			i++
			if i < int(cpCount) {
				entries[i] = cpEntry{unused: true}
			}
		}
	}

	utf8At := func(idx int) (string, error) {
		if idx <= 0 || idx >= len(entries) || entries[idx].tag != tagUtf8 {
			return "", fmt.Errorf("constant pool index %d is not a Utf8 entry", idx)
		}
		return string(entries[idx].raw[2:]), nil
	}
	moduleNameAt := func(idx int) (string, error) {
		if idx <= 0 || idx >= len(entries) || entries[idx].tag != tagModule {
			return "", fmt.Errorf("constant pool index %d is not a Module entry", idx)
		}
		nameIdx := int(binary.BigEndian.Uint16(entries[idx].raw))
		return utf8At(nameIdx)
	}

	rest, err := io.ReadAll(r)
	if err != nil {
		return nil, false, fmt.Errorf("reading class body: %w", err)
	}
	body := bytes.NewReader(rest)

	// access_flags, this_class, super_class: 6 bytes, copied verbatim.
	preamble, err := readN(body, 6)
	if err != nil {
		return nil, false, fmt.Errorf("reading class preamble: %w", err)
	}

	interfacesBlob, err := readCountedU2Block(body)
	if err != nil {
		return nil, false, fmt.Errorf("reading interfaces: %w", err)
	}
	fieldsBlob, err := readMembersBlock(body)
	if err != nil {
		return nil, false, fmt.Errorf("reading fields: %w", err)
	}
	methodsBlob, err := readMembersBlock(body)
	if err != nil {
		return nil, false, fmt.Errorf("reading methods: %w", err)
	}

	attrCount, err := readU2(body)
	if err != nil {
		return nil, false, fmt.Errorf("reading class attribute count: %w", err)
	}

	type rawAttr struct {
		nameIndex uint16
		info      []byte
	}
	attrs := make([]rawAttr, attrCount)
	moduleAttrIdx := -1
	for i := 0; i < int(attrCount); i++ {
		nameIdx, err := readU2(body)
		if err != nil {
			return nil, false, fmt.Errorf("reading attribute %d name index: %w", i, err)
		}
		length, err := readU4(body)
		if err != nil {
			return nil, false, fmt.Errorf("reading attribute %d length: %w", i, err)
		}
		info := make([]byte, length)
		if _, err := io.ReadFull(body, info); err != nil {
			return nil, false, fmt.Errorf("reading attribute %d body: %w", i, err)
		}
		attrs[i] = rawAttr{nameIndex: uint16(nameIdx), info: info}
		name, err := utf8At(int(nameIdx))
		if err == nil && name == "Module" {
			moduleAttrIdx = i
		}
	}

	if moduleAttrIdx == -1 {
		return nil, false, nil // not a module-info class at all: no change
	}

	modAttr := attrs[moduleAttrIdx].info
	mr := bytes.NewReader(modAttr)
	moduleNameIdx, _ := readU2(mr)
	moduleFlags, _ := readU2(mr)
	moduleVersionIdx, _ := readU2(mr)

	requiresCount, err := readU2(mr)
	if err != nil {
		return nil, false, fmt.Errorf("reading requires_count: %w", err)
	}
	type requiresEntry struct {
		moduleIndex  uint16
		flags        uint16
		versionIndex uint16
	}
	requires := make([]requiresEntry, requiresCount)
	for i := range requires {
		idx, _ := readU2(mr)
		flags, _ := readU2(mr)
		verIdx, _ := readU2(mr)
		requires[i] = requiresEntry{uint16(idx), uint16(flags), uint16(verIdx)}
	}
	// The remainder of the Module attribute (exports, opens, uses,
	// provides) is untouched by this patcher; preserved verbatim below.
	remainderOffset := len(modAttr) - mr.Len()
	remainder := modAttr[remainderOffset:]

	var extraUtf8 [][]byte
	patchedModules := map[string]bool{}
	oldVersions := map[string]bool{}
	anyChange := false

	newUtf8Index := func(s string) int {
		idx := len(entries) + len(extraUtf8)
		extraUtf8 = append(extraUtf8, append(u2bytes(len(s)), []byte(s)...))
		return idx
	}

	for i, req := range requires {
		if req.versionIndex == 0 {
			continue
		}
		name, err := moduleNameAt(int(req.moduleIndex))
		if err != nil {
			return nil, false, fmt.Errorf("requires entry %d: %w", i, err)
		}
		if !strings.HasPrefix(name, "java.") && !strings.HasPrefix(name, "jdk.") {
			continue
		}
		oldVersion, err := utf8At(int(req.versionIndex))
		if err != nil {
			return nil, false, fmt.Errorf("requires entry %d version: %w", i, err)
		}
		if oldVersion == targetRelease {
			continue
		}
		newIdx := newUtf8Index(targetRelease)
		requires[i].versionIndex = uint16(newIdx)
		patchedModules[name] = true
		oldVersions[oldVersion] = true
		anyChange = true
	}

	if !anyChange {
		return nil, false, nil
	}

	// Rebuild the constant pool: original entries plus the new Utf8
	// entries appended at the end.
	var cpBuf bytes.Buffer
	for i := 1; i < len(entries); i++ {
		e := entries[i]
		if e.unused {
			continue
		}
		cpBuf.WriteByte(e.tag)
		cpBuf.Write(e.raw)
	}
	for _, u := range extraUtf8 {
		cpBuf.WriteByte(tagUtf8)
		cpBuf.Write(u)
	}
	newCPCount := len(entries) + len(extraUtf8)

	var modBuf bytes.Buffer
	writeU2(&modBuf, int(moduleNameIdx))
	writeU2(&modBuf, int(moduleFlags))
	writeU2(&modBuf, int(moduleVersionIdx))
	writeU2(&modBuf, len(requires))
	for _, req := range requires {
		writeU2(&modBuf, int(req.moduleIndex))
		writeU2(&modBuf, int(req.flags))
		writeU2(&modBuf, int(req.versionIndex))
	}
	modBuf.Write(remainder)

	var out bytes.Buffer
	out.Write(header)
	writeU2(&out, newCPCount)
	out.Write(cpBuf.Bytes())
	out.Write(preamble)
	out.Write(interfacesBlob)
	out.Write(fieldsBlob)
	out.Write(methodsBlob)
	writeU2(&out, int(attrCount))
	for i, a := range attrs {
		writeU2(&out, int(a.nameIndex))
		if i == moduleAttrIdx {
			writeU4(&out, modBuf.Len())
			out.Write(modBuf.Bytes())
		} else {
			writeU4(&out, len(a.info))
			out.Write(a.info)
		}
	}

	if log != nil {
		modules := make([]string, 0, len(patchedModules))
		for m := range patchedModules {
			modules = append(modules, m)
		}
		sort.Strings(modules)
		versions := make([]string, 0, len(oldVersions))
		for v := range oldVersions {
			versions = append(versions, v)
		}
		sort.Strings(versions)
		log.Info(fmt.Sprintf("patched module-info: %v now requires @%s (was %v)", modules, targetRelease, versions))
	}

	return out.Bytes(), true, nil
}

func readU1(r io.Reader) (byte, error) {
	var b [1]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	return b[0], nil
}

func readU2(r io.Reader) (int, error) {
	var b [2]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	return int(binary.BigEndian.Uint16(b[:])), nil
}

func readU4(r io.Reader) (int, error) {
	var b [4]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	return int(binary.BigEndian.Uint32(b[:])), nil
}

func readN(r io.Reader, n int) ([]byte, error) {
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

func u2bytes(n int) []byte {
	b := make([]byte, 2)
	binary.BigEndian.PutUint16(b, uint16(n))
	return b
}

func writeU2(w *bytes.Buffer, n int) {
	w.Write(u2bytes(n))
}

func writeU4(w *bytes.Buffer, n int) {
	b := make([]byte, 4)
	binary.BigEndian.PutUint32(b, uint32(n))
	w.Write(b)
}

// readCountedU2Block reads a u2 count N followed by N u2 entries and
// returns the whole block (count + entries) verbatim, for sections
// (like the interfaces table) this patcher never needs to interpret.
func readCountedU2Block(r io.Reader) ([]byte, error) {
	var buf bytes.Buffer
	count, err := readU2(r)
	if err != nil {
		return nil, err
	}
	writeU2(&buf, count)
	entries, err := readN(r, count*2)
	if err != nil {
		return nil, err
	}
	buf.Write(entries)
	return buf.Bytes(), nil
}

// readMembersBlock reads a fields_info or methods_info table (count
// followed by count member records, each with a nested attributes
// table) and returns it verbatim.
func readMembersBlock(r io.Reader) ([]byte, error) {
	var buf bytes.Buffer
	count, err := readU2(r)
	if err != nil {
		return nil, err
	}
	writeU2(&buf, count)
	for i := 0; i < count; i++ {
		head, err := readN(r, 6) // access_flags, name_index, descriptor_index
		if err != nil {
			return nil, err
		}
		buf.Write(head)
		attrCount, err := readU2(r)
		if err != nil {
			return nil, err
		}
		writeU2(&buf, attrCount)
		for j := 0; j < attrCount; j++ {
			nameIdx, err := readU2(r)
			if err != nil {
				return nil, err
			}
			length, err := readU4(r)
			if err != nil {
				return nil, err
			}
			info, err := readN(r, length)
			if err != nil {
				return nil, err
			}
			writeU2(&buf, nameIdx)
			writeU4(&buf, length)
			buf.Write(info)
		}
	}
	return buf.Bytes(), nil
}
