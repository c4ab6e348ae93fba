package loaders

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// PBRTStatement represents a parsed PBRT statement
type PBRTStatement struct {
	Type       string               // Statement type (MakeNamedMaterial, Material, Texture, etc.)
	Subtype    string               // First quoted argument (material name, material type, texture name)
	Args       []string             // Further quoted arguments before the parameter list
	Parameters map[string]PBRTParam // Named parameters
}

// PBRTParam represents a parameter with type and value(s)
type PBRTParam struct {
	Type   string   // Parameter type (float, rgb, string, texture, etc.)
	Values []string // Parameter values as strings, quotes removed
}

// pbrtParser accumulates multi-line statements and collects material definitions
type pbrtParser struct {
	cfg            *LibraryConfig
	anonymous      int
	statementLines []string
}

// ParsePBRTMaterials reads the material and texture statements of a PBRT
// file into a library description. Other statements are skipped, so whole
// scene files can be used as libraries.
func ParsePBRTMaterials(reader io.Reader) (*LibraryConfig, error) {
	p := &pbrtParser{
		cfg: &LibraryConfig{
			Textures:  make(map[string]TextureConfig),
			Materials: make(map[string]MaterialConfig),
		},
	}

	scanner := bufio.NewScanner(reader)
	for scanner.Scan() {
		if err := p.processLine(scanner.Text()); err != nil {
			return nil, err
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading input: %w", err)
	}

	// Process any remaining accumulated statements
	if err := p.processAccumulatedStatement("at end of file"); err != nil {
		return nil, err
	}
	return p.cfg, nil
}

// processAccumulatedStatement processes any accumulated statement lines and clears them
func (p *pbrtParser) processAccumulatedStatement(context string) error {
	if len(p.statementLines) == 0 {
		return nil
	}
	fullStatement := strings.Join(p.statementLines, " ")
	p.statementLines = nil
	stmt, err := parseStatement(fullStatement)
	if err != nil {
		return fmt.Errorf("error parsing statement %s '%s': %w", context, fullStatement, err)
	}
	return p.routeStatement(stmt)
}

// processLine processes a single line of PBRT input
func (p *pbrtParser) processLine(line string) error {
	if i := strings.Index(line, "#"); i >= 0 && !strings.Contains(line[:i], "\"") {
		line = line[:i]
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}

	// Block directives carry no materials of their own
	switch line {
	case "WorldBegin", "WorldEnd", "AttributeBegin", "AttributeEnd", "TransformBegin", "TransformEnd":
		return p.processAccumulatedStatement("before " + line)
	}

	if isStatementStart(line) {
		if err := p.processAccumulatedStatement(""); err != nil {
			return err
		}
		p.statementLines = []string{line}
		return nil
	}

	if len(p.statementLines) == 0 {
		return fmt.Errorf("unexpected continuation line: %s", line)
	}
	p.statementLines = append(p.statementLines, line)
	return nil
}

// routeStatement turns material and texture statements into library entries
func (p *pbrtParser) routeStatement(stmt *PBRTStatement) error {
	switch stmt.Type {
	case "MakeNamedMaterial":
		if stmt.Subtype == "" {
			return fmt.Errorf("MakeNamedMaterial needs a name")
		}
		kind, _ := stmt.GetStringParam("type")
		mc, err := convertMaterial(kind, stmt)
		if err != nil {
			return fmt.Errorf("material %q: %w", stmt.Subtype, err)
		}
		p.cfg.Materials[stmt.Subtype] = mc
	case "Material":
		mc, err := convertMaterial(stmt.Subtype, stmt)
		if err != nil {
			return fmt.Errorf("material %q: %w", stmt.Subtype, err)
		}
		p.anonymous++
		p.cfg.Materials[fmt.Sprintf("material%d", p.anonymous)] = mc
	case "Texture":
		tc, err := convertTexture(stmt)
		if err != nil {
			return fmt.Errorf("texture %q: %w", stmt.Subtype, err)
		}
		p.cfg.Textures[stmt.Subtype] = tc
	}
	return nil
}

// convertMaterial maps a PBRT material type and its parameters onto a material description.
// Types the library knows by its own name pass through unchanged.
func convertMaterial(kind string, stmt *PBRTStatement) (MaterialConfig, error) {
	mc := MaterialConfig{Type: kind}
	mc.Roughness = stmt.floatPtr("roughness")
	mc.URoughness = stmt.floatPtr("uroughness")
	mc.VRoughness = stmt.floatPtr("vroughness")
	if r := stmt.colorParam("roughness"); r != nil && r.Texture != "" {
		mc.RoughnessTexture = r.Texture
	}
	if v, ok := stmt.GetFloatParam("sigma"); ok {
		mc.Sigma = v
	}
	if v, ok := stmt.GetFloatParam("eta"); ok {
		mc.Index = v
	}
	if v, ok := stmt.GetFloatParam("index"); ok {
		mc.Index = v
	}

	switch kind {
	case "diffuse", "matte":
		mc.Type = "matte"
		mc.Kd = stmt.colorParam("reflectance", "Kd")
	case "coateddiffuse", "plastic", "glossy":
		mc.Type = "glossy"
		mc.Kd = stmt.colorParam("reflectance", "Kd")
		mc.Ks = stmt.colorParam("Ks")
		if v, ok := stmt.GetFloatParam("thickness"); ok {
			mc.Depth = v
		}
		mc.Ka = stmt.colorParam("albedo", "Ka")
		if mc.Ks == nil {
			// Specular strength then comes from the coat index alone
			one := 1.0
			mc.Ks = &ColorConfig{Value: &one}
			if mc.Index == 0 {
				mc.Index = 1.5
			}
		}
	case "conductor", "metal":
		mc.Type = "metal"
		mc.Eta = stmt.colorParam("eta")
		mc.K = stmt.colorParam("k")
		mc.Kr = stmt.colorParam("reflectance", "Kr")
		// A scalar eta is a dielectric index, not a conductor spectrum
		mc.Index = 0
	case "dielectric", "glass":
		mc.Type = "glass"
		mc.Kr = stmt.colorParam("Kr")
		mc.Kt = stmt.colorParam("Kt")
		if r := mc.Roughness; (r != nil && *r > 0) || mc.URoughness != nil || mc.VRoughness != nil {
			mc.Type = "roughglass"
		}
		if v, ok := stmt.GetFloatParam("cauchyb"); ok {
			mc.CauchyB = v
		}
	case "thindielectric", "archglass":
		mc.Type = "archglass"
		mc.Kr = stmt.colorParam("Kr")
		mc.Kt = stmt.colorParam("Kt")
	case "diffusetransmission", "mattetranslucent":
		mc.Type = "mattetranslucent"
		mc.Kr = stmt.colorParam("reflectance", "Kr")
		mc.Kt = stmt.colorParam("transmittance", "Kt")
	case "mirror":
		mc.Kr = stmt.colorParam("Kr", "reflectance")
	case "mix":
		mc.Materials = stmt.GetStringsParam("materials")
		if v, ok := stmt.GetFloatParam("amount"); ok {
			mc.Amount = &v
		} else {
			half := 0.5
			mc.Amount = &half
		}
	case "interface", "null":
		mc.Type = "null"
	case "cloth":
		mc.Preset, _ = stmt.GetStringParam("presetname")
		mc.RepeatU, _ = stmt.GetFloatParam("repeat_u")
		mc.RepeatV, _ = stmt.GetFloatParam("repeat_v")
		mc.WarpKd = stmt.colorParam("warp_Kd")
		mc.WarpKs = stmt.colorParam("warp_Ks")
		mc.WeftKd = stmt.colorParam("weft_Kd")
		mc.WeftKs = stmt.colorParam("weft_Ks")
	case "":
		return mc, fmt.Errorf("missing material type")
	default:
		return mc, fmt.Errorf("unsupported material type %q", kind)
	}
	return mc, nil
}

// convertTexture maps a PBRT texture statement onto a texture description
func convertTexture(stmt *PBRTStatement) (TextureConfig, error) {
	if len(stmt.Args) < 2 {
		return TextureConfig{}, fmt.Errorf("texture needs a value type and a class")
	}
	class := stmt.Args[1]
	tc := TextureConfig{}
	switch class {
	case "imagemap":
		filename, ok := stmt.GetStringParam("filename")
		if !ok {
			return tc, fmt.Errorf("imagemap needs a filename")
		}
		tc.Type = "image"
		tc.Path = filename
	case "checkerboard":
		tc.Type = "checker"
		tc.Tex1 = stmt.colorParam("tex1")
		tc.Tex2 = stmt.colorParam("tex2")
		if v, ok := stmt.GetFloatParam("checks"); ok {
			tc.Checks = v
		} else if v, ok := stmt.GetFloatParam("uscale"); ok {
			tc.Checks = v
		}
	case "mix":
		tc.Type = "mix"
		tc.Tex1 = stmt.colorParam("tex1")
		tc.Tex2 = stmt.colorParam("tex2")
		tc.Amount = stmt.colorParam("amount")
	case "gradient":
		tc.Type = "gradient"
		tc.Tex1 = stmt.colorParam("tex1")
		tc.Tex2 = stmt.colorParam("tex2")
	case "scale":
		tc.Type = "scale"
		tc.Tex1 = stmt.colorParam("tex")
		tc.Tex2 = stmt.colorParam("scale")
	case "uv":
		tc.Type = "uv"
	default:
		return tc, fmt.Errorf("unsupported texture class %q", class)
	}
	return tc, nil
}

// tokenizePBRT tokenizes a PBRT line respecting quoted strings and brackets
func tokenizePBRT(line string) []string {
	var tokens []string
	var current strings.Builder
	inQuotes := false
	inBrackets := false

	for _, char := range line {
		switch char {
		case '"':
			current.WriteRune(char)
			if !inBrackets {
				if inQuotes {
					tokens = append(tokens, current.String())
					current.Reset()
				}
				inQuotes = !inQuotes
			}
		case '[':
			if !inQuotes {
				if current.Len() > 0 {
					tokens = append(tokens, current.String())
					current.Reset()
				}
				inBrackets = true
			}
			current.WriteRune(char)
		case ']':
			current.WriteRune(char)
			if !inQuotes && inBrackets {
				tokens = append(tokens, current.String())
				current.Reset()
				inBrackets = false
			}
		case ' ', '\t':
			if inQuotes || inBrackets {
				current.WriteRune(char)
			} else if current.Len() > 0 {
				tokens = append(tokens, current.String())
				current.Reset()
			}
		default:
			current.WriteRune(char)
		}
	}

	if current.Len() > 0 {
		tokens = append(tokens, current.String())
	}
	return tokens
}

func isQuoted(token string) bool {
	return len(token) >= 2 && strings.HasPrefix(token, "\"") && strings.HasSuffix(token, "\"")
}

// parseStatement parses a single PBRT statement: Type "subtype" "args"... "param type" value
func parseStatement(line string) (*PBRTStatement, error) {
	parts := tokenizePBRT(line)
	if len(parts) == 0 {
		return nil, fmt.Errorf("invalid statement format")
	}

	stmt := &PBRTStatement{
		Type:       parts[0],
		Parameters: make(map[string]PBRTParam),
	}
	parts = parts[1:]

	// Leading single-word quoted strings are positional arguments
	for len(parts) > 0 && isQuoted(parts[0]) && len(strings.Fields(strings.Trim(parts[0], "\""))) == 1 {
		arg := strings.Trim(parts[0], "\"")
		if stmt.Subtype == "" {
			stmt.Subtype = arg
		} else {
			stmt.Args = append(stmt.Args, arg)
		}
		parts = parts[1:]
	}

	i := 0
	for i < len(parts) {
		if !isQuoted(parts[i]) {
			i++
			continue
		}

		paramParts := strings.Fields(strings.Trim(parts[i], "\""))
		if len(paramParts) != 2 {
			return nil, fmt.Errorf("invalid parameter declaration %s", parts[i])
		}
		paramType, paramName := paramParts[0], paramParts[1]
		i++

		var values []string
		if i < len(parts) {
			if strings.HasPrefix(parts[i], "[") && strings.HasSuffix(parts[i], "]") {
				values = splitValues(strings.Trim(parts[i], "[] "))
			} else {
				values = []string{strings.Trim(parts[i], "\"")}
			}
			i++
		}

		stmt.Parameters[paramName] = PBRTParam{
			Type:   paramType,
			Values: values,
		}
	}

	return stmt, nil
}

// splitValues splits the inside of a bracketed array, removing quotes from strings
func splitValues(s string) []string {
	var values []string
	for _, tok := range tokenizePBRT(s) {
		values = append(values, strings.Trim(tok, "\""))
	}
	return values
}

// GetFloatParam extracts a float parameter from a PBRT statement
func (stmt *PBRTStatement) GetFloatParam(name string) (float64, bool) {
	param, exists := stmt.Parameters[name]
	if !exists || len(param.Values) == 0 {
		return 0, false
	}
	val, err := strconv.ParseFloat(param.Values[0], 64)
	if err != nil {
		return 0, false
	}
	return val, true
}

// GetRGBParam extracts an RGB color parameter from a PBRT statement
func (stmt *PBRTStatement) GetRGBParam(name string) ([]float64, bool) {
	param, exists := stmt.Parameters[name]
	if !exists || len(param.Values) < 3 || param.Type == "texture" {
		return nil, false
	}
	rgb := make([]float64, 3)
	for i := range rgb {
		v, err := strconv.ParseFloat(param.Values[i], 64)
		if err != nil {
			return nil, false
		}
		rgb[i] = v
	}
	return rgb, true
}

// GetStringParam extracts a string parameter from a PBRT statement
func (stmt *PBRTStatement) GetStringParam(name string) (string, bool) {
	param, exists := stmt.Parameters[name]
	if !exists || len(param.Values) == 0 {
		return "", false
	}
	return param.Values[0], true
}

// GetStringsParam extracts all values of a string array parameter
func (stmt *PBRTStatement) GetStringsParam(name string) []string {
	return stmt.Parameters[name].Values
}

func (stmt *PBRTStatement) floatPtr(name string) *float64 {
	if v, ok := stmt.GetFloatParam(name); ok {
		return &v
	}
	return nil
}

// colorParam reads the first of names present as an rgb, a float or a texture reference
func (stmt *PBRTStatement) colorParam(names ...string) *ColorConfig {
	for _, name := range names {
		param, ok := stmt.Parameters[name]
		if !ok || len(param.Values) == 0 {
			continue
		}
		switch param.Type {
		case "texture":
			return &ColorConfig{Texture: param.Values[0]}
		case "float":
			if v, ok := stmt.GetFloatParam(name); ok {
				return &ColorConfig{Value: &v}
			}
		default:
			if rgb, ok := stmt.GetRGBParam(name); ok {
				return &ColorConfig{RGB: rgb}
			}
		}
	}
	return nil
}

// isStatementStart determines if a line starts a new PBRT statement
func isStatementStart(line string) bool {
	statementTypes := []string{
		"Camera", "Film", "Sampler", "Integrator", "LookAt",
		"MakeNamedMaterial", "NamedMaterial", "Material", "Texture",
		"Shape", "LightSource", "AreaLightSource",
		"Translate", "Rotate", "Scale", "Transform", "ConcatTransform",
		"ReverseOrientation", "Attribute", "ObjectBegin", "ObjectEnd", "ObjectInstance",
	}

	for _, stmt := range statementTypes {
		if strings.HasPrefix(line, stmt+" ") || line == stmt {
			return true
		}
	}
	return false
}
